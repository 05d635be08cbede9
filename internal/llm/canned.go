package llm

// CannedReply is the fixed answer used when no model reply is available.
const CannedReply = "I'm here to help you with flight bookings. You can search for flights, select offers, provide booking details, and complete payments. How can I assist you today?"
