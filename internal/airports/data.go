package airports

var catalogue = []Airport{
	// India
	{Code: "HYD", City: "Hyderabad", Name: "Rajiv Gandhi International Airport", Country: "India"},
	{Code: "BOM", City: "Mumbai", Name: "Chhatrapati Shivaji Maharaj International Airport", Country: "India"},
	{Code: "DEL", City: "Delhi", Name: "Indira Gandhi International Airport", Country: "India"},
	{Code: "BLR", City: "Bangalore", Name: "Kempegowda International Airport", Country: "India"},
	{Code: "MAA", City: "Chennai", Name: "Chennai International Airport", Country: "India"},
	{Code: "CCU", City: "Kolkata", Name: "Netaji Subhas Chandra Bose International Airport", Country: "India"},
	{Code: "PNQ", City: "Pune", Name: "Pune Airport", Country: "India"},
	{Code: "AMD", City: "Ahmedabad", Name: "Sardar Vallabhbhai Patel International Airport", Country: "India"},
	{Code: "GOI", City: "Goa", Name: "Goa International Airport", Country: "India"},
	{Code: "COK", City: "Kochi", Name: "Cochin International Airport", Country: "India"},
	{Code: "IXC", City: "Chandigarh", Name: "Chandigarh Airport", Country: "India"},
	{Code: "JAI", City: "Jaipur", Name: "Jaipur International Airport", Country: "India"},
	{Code: "LKO", City: "Lucknow", Name: "Chaudhary Charan Singh International Airport", Country: "India"},
	{Code: "VGA", City: "Vijayawada", Name: "Vijayawada Airport", Country: "India"},
	{Code: "VTZ", City: "Visakhapatnam", Name: "Visakhapatnam Airport", Country: "India"},
	{Code: "IDR", City: "Indore", Name: "Devi Ahilya Bai Holkar Airport", Country: "India"},
	{Code: "NAG", City: "Nagpur", Name: "Dr. Babasaheb Ambedkar International Airport", Country: "India"},
	{Code: "STV", City: "Surat", Name: "Surat Airport", Country: "India"},
	{Code: "CJB", City: "Coimbatore", Name: "Coimbatore International Airport", Country: "India"},
	{Code: "TRV", City: "Trivandrum", Name: "Trivandrum International Airport", Country: "India"},
	{Code: "IXB", City: "Bagdogra", Name: "Bagdogra Airport", Country: "India"},
	{Code: "GAU", City: "Guwahati", Name: "Lokpriya Gopinath Bordoloi International Airport", Country: "India"},
	{Code: "IXR", City: "Ranchi", Name: "Birsa Munda Airport", Country: "India"},
	{Code: "PAT", City: "Patna", Name: "Jay Prakash Narayan Airport", Country: "India"},
	{Code: "BBI", City: "Bhubaneswar", Name: "Biju Patnaik International Airport", Country: "India"},
	{Code: "IXZ", City: "Port Blair", Name: "Veer Savarkar International Airport", Country: "India"},
	{Code: "SXR", City: "Srinagar", Name: "Sheikh ul-Alam International Airport", Country: "India"},
	{Code: "IXJ", City: "Jammu", Name: "Jammu Airport", Country: "India"},
	{Code: "IXA", City: "Agartala", Name: "Agartala Airport", Country: "India"},
	{Code: "IXD", City: "Allahabad", Name: "Allahabad Airport", Country: "India"},
	{Code: "RPR", City: "Raipur", Name: "Swami Vivekananda Airport", Country: "India"},
	{Code: "JLR", City: "Jabalpur", Name: "Jabalpur Airport", Country: "India"},
	{Code: "UDR", City: "Udaipur", Name: "Maharana Pratap Airport", Country: "India"},
	{Code: "JDH", City: "Jodhpur", Name: "Jodhpur Airport", Country: "India"},
	{Code: "BDQ", City: "Vadodara", Name: "Vadodara Airport", Country: "India"},
	{Code: "IXU", City: "Aurangabad", Name: "Aurangabad Airport", Country: "India"},
	{Code: "IXE", City: "Mangalore", Name: "Mangalore International Airport", Country: "India"},

	// USA
	{Code: "JFK", City: "New York", Name: "John F. Kennedy International Airport", Country: "United States"},
	{Code: "LAX", City: "Los Angeles", Name: "Los Angeles International Airport", Country: "United States"},
	{Code: "ORD", City: "Chicago", Name: "O'Hare International Airport", Country: "United States"},
	{Code: "SFO", City: "San Francisco", Name: "San Francisco International Airport", Country: "United States"},
	{Code: "DFW", City: "Dallas", Name: "Dallas/Fort Worth International Airport", Country: "United States"},
	{Code: "MIA", City: "Miami", Name: "Miami International Airport", Country: "United States"},
	{Code: "SEA", City: "Seattle", Name: "Seattle-Tacoma International Airport", Country: "United States"},
	{Code: "LAS", City: "Las Vegas", Name: "McCarran International Airport", Country: "United States"},
	{Code: "ATL", City: "Atlanta", Name: "Hartsfield-Jackson Atlanta International Airport", Country: "United States"},
	{Code: "BOS", City: "Boston", Name: "Logan International Airport", Country: "United States"},
	{Code: "DEN", City: "Denver", Name: "Denver International Airport", Country: "United States"},
	{Code: "PHX", City: "Phoenix", Name: "Phoenix Sky Harbor International Airport", Country: "United States"},
	{Code: "SAN", City: "San Diego", Name: "San Diego International Airport", Country: "United States"},
	{Code: "IAD", City: "Washington", Name: "Washington Dulles International Airport", Country: "United States"},
	{Code: "DCA", City: "Washington", Name: "Ronald Reagan Washington National Airport", Country: "United States"},
	{Code: "PHL", City: "Philadelphia", Name: "Philadelphia International Airport", Country: "United States"},
	{Code: "DTW", City: "Detroit", Name: "Detroit Metropolitan Airport", Country: "United States"},
	{Code: "MSP", City: "Minneapolis", Name: "Minneapolis-Saint Paul International Airport", Country: "United States"},
	{Code: "BWI", City: "Baltimore", Name: "Baltimore/Washington International Airport", Country: "United States"},
	{Code: "HOU", City: "Houston", Name: "William P. Hobby Airport", Country: "United States"},
	{Code: "IAH", City: "Houston", Name: "George Bush Intercontinental Airport", Country: "United States"},
	{Code: "MCO", City: "Orlando", Name: "Orlando International Airport", Country: "United States"},
	{Code: "TPA", City: "Tampa", Name: "Tampa International Airport", Country: "United States"},
	{Code: "FLL", City: "Fort Lauderdale", Name: "Fort Lauderdale-Hollywood International Airport", Country: "United States"},
	{Code: "PDX", City: "Portland", Name: "Portland International Airport", Country: "United States"},
	{Code: "STL", City: "St. Louis", Name: "St. Louis Lambert International Airport", Country: "United States"},
	{Code: "CLE", City: "Cleveland", Name: "Cleveland Hopkins International Airport", Country: "United States"},
	{Code: "BNA", City: "Nashville", Name: "Nashville International Airport", Country: "United States"},
	{Code: "AUS", City: "Austin", Name: "Austin-Bergstrom International Airport", Country: "United States"},

	// Europe
	{Code: "LHR", City: "London", Name: "Heathrow Airport", Country: "United Kingdom"},
	{Code: "CDG", City: "Paris", Name: "Charles de Gaulle Airport", Country: "France"},
	{Code: "FRA", City: "Frankfurt", Name: "Frankfurt Airport", Country: "Germany"},
	{Code: "AMS", City: "Amsterdam", Name: "Amsterdam Airport Schiphol", Country: "Netherlands"},
	{Code: "MAD", City: "Madrid", Name: "Adolfo Suárez Madrid–Barajas Airport", Country: "Spain"},
	{Code: "FCO", City: "Rome", Name: "Leonardo da Vinci–Fiumicino Airport", Country: "Italy"},
	{Code: "IST", City: "Istanbul", Name: "Istanbul Airport", Country: "Turkey"},
	{Code: "BER", City: "Berlin", Name: "Berlin Brandenburg Airport", Country: "Germany"},
	{Code: "MUC", City: "Munich", Name: "Munich Airport", Country: "Germany"},
	{Code: "DUS", City: "Düsseldorf", Name: "Düsseldorf Airport", Country: "Germany"},
	{Code: "HAM", City: "Hamburg", Name: "Hamburg Airport", Country: "Germany"},
	{Code: "ZRH", City: "Zurich", Name: "Zurich Airport", Country: "Switzerland"},
	{Code: "GVA", City: "Geneva", Name: "Geneva Airport", Country: "Switzerland"},
	{Code: "VIE", City: "Vienna", Name: "Vienna International Airport", Country: "Austria"},
	{Code: "BRU", City: "Brussels", Name: "Brussels Airport", Country: "Belgium"},
	{Code: "CPH", City: "Copenhagen", Name: "Copenhagen Airport", Country: "Denmark"},
	{Code: "ARN", City: "Stockholm", Name: "Stockholm Arlanda Airport", Country: "Sweden"},
	{Code: "OSL", City: "Oslo", Name: "Oslo Airport", Country: "Norway"},
	{Code: "HEL", City: "Helsinki", Name: "Helsinki Airport", Country: "Finland"},
	{Code: "DUB", City: "Dublin", Name: "Dublin Airport", Country: "Ireland"},
	{Code: "EDI", City: "Edinburgh", Name: "Edinburgh Airport", Country: "United Kingdom"},
	{Code: "MAN", City: "Manchester", Name: "Manchester Airport", Country: "United Kingdom"},
	{Code: "BCN", City: "Barcelona", Name: "Barcelona-El Prat Airport", Country: "Spain"},
	{Code: "LIS", City: "Lisbon", Name: "Lisbon Airport", Country: "Portugal"},
	{Code: "ATH", City: "Athens", Name: "Athens International Airport", Country: "Greece"},
	{Code: "PRG", City: "Prague", Name: "Václav Havel Airport Prague", Country: "Czech Republic"},
	{Code: "BUD", City: "Budapest", Name: "Budapest Ferenc Liszt International Airport", Country: "Hungary"},
	{Code: "WAW", City: "Warsaw", Name: "Warsaw Chopin Airport", Country: "Poland"},
	{Code: "MXP", City: "Milan", Name: "Milan Malpensa Airport", Country: "Italy"},
	{Code: "VCE", City: "Venice", Name: "Venice Marco Polo Airport", Country: "Italy"},
	{Code: "FLR", City: "Florence", Name: "Florence Airport", Country: "Italy"},

	// Middle East & Asia
	{Code: "DXB", City: "Dubai", Name: "Dubai International Airport", Country: "United Arab Emirates"},
	{Code: "AUH", City: "Abu Dhabi", Name: "Abu Dhabi International Airport", Country: "United Arab Emirates"},
	{Code: "SIN", City: "Singapore", Name: "Singapore Changi Airport", Country: "Singapore"},
	{Code: "BKK", City: "Bangkok", Name: "Suvarnabhumi Airport", Country: "Thailand"},
	{Code: "KUL", City: "Kuala Lumpur", Name: "Kuala Lumpur International Airport", Country: "Malaysia"},
	{Code: "HKG", City: "Hong Kong", Name: "Hong Kong International Airport", Country: "Hong Kong"},
	{Code: "NRT", City: "Tokyo", Name: "Narita International Airport", Country: "Japan"},
	{Code: "ICN", City: "Seoul", Name: "Incheon International Airport", Country: "South Korea"},
	{Code: "PEK", City: "Beijing", Name: "Beijing Capital International Airport", Country: "China"},
	{Code: "PVG", City: "Shanghai", Name: "Shanghai Pudong International Airport", Country: "China"},
	{Code: "CAN", City: "Guangzhou", Name: "Guangzhou Baiyun International Airport", Country: "China"},
	{Code: "SZX", City: "Shenzhen", Name: "Shenzhen Bao'an International Airport", Country: "China"},
	{Code: "CTU", City: "Chengdu", Name: "Chengdu Shuangliu International Airport", Country: "China"},
	{Code: "HND", City: "Tokyo", Name: "Tokyo Haneda Airport", Country: "Japan"},
	{Code: "KIX", City: "Osaka", Name: "Kansai International Airport", Country: "Japan"},
	{Code: "GMP", City: "Seoul", Name: "Gimpo International Airport", Country: "South Korea"},
	{Code: "DOH", City: "Doha", Name: "Hamad International Airport", Country: "Qatar"},
	{Code: "RUH", City: "Riyadh", Name: "King Khalid International Airport", Country: "Saudi Arabia"},
	{Code: "JED", City: "Jeddah", Name: "King Abdulaziz International Airport", Country: "Saudi Arabia"},
	{Code: "BAH", City: "Manama", Name: "Bahrain International Airport", Country: "Bahrain"},
	{Code: "KWI", City: "Kuwait City", Name: "Kuwait International Airport", Country: "Kuwait"},
	{Code: "MCT", City: "Muscat", Name: "Muscat International Airport", Country: "Oman"},
	{Code: "CGK", City: "Jakarta", Name: "Soekarno-Hatta International Airport", Country: "Indonesia"},
	{Code: "DPS", City: "Bali", Name: "Ngurah Rai International Airport", Country: "Indonesia"},
	{Code: "MNL", City: "Manila", Name: "Ninoy Aquino International Airport", Country: "Philippines"},
	{Code: "DAC", City: "Dhaka", Name: "Hazrat Shahjalal International Airport", Country: "Bangladesh"},
	{Code: "KTM", City: "Kathmandu", Name: "Tribhuvan International Airport", Country: "Nepal"},
	{Code: "CMB", City: "Colombo", Name: "Bandaranaike International Airport", Country: "Sri Lanka"},
	{Code: "ISB", City: "Islamabad", Name: "Islamabad International Airport", Country: "Pakistan"},
	{Code: "KHI", City: "Karachi", Name: "Jinnah International Airport", Country: "Pakistan"},
	{Code: "LHE", City: "Lahore", Name: "Allama Iqbal International Airport", Country: "Pakistan"},
	{Code: "HAN", City: "Hanoi", Name: "Noi Bai International Airport", Country: "Vietnam"},
	{Code: "SGN", City: "Ho Chi Minh City", Name: "Tan Son Nhat International Airport", Country: "Vietnam"},
	{Code: "BWN", City: "Bandar Seri Begawan", Name: "Brunei International Airport", Country: "Brunei"},

	// Australia & Oceania
	{Code: "SYD", City: "Sydney", Name: "Sydney Kingsford Smith Airport", Country: "Australia"},
	{Code: "MEL", City: "Melbourne", Name: "Melbourne Airport", Country: "Australia"},
	{Code: "BNE", City: "Brisbane", Name: "Brisbane Airport", Country: "Australia"},
	{Code: "PER", City: "Perth", Name: "Perth Airport", Country: "Australia"},
	{Code: "ADL", City: "Adelaide", Name: "Adelaide Airport", Country: "Australia"},
	{Code: "AKL", City: "Auckland", Name: "Auckland Airport", Country: "New Zealand"},
	{Code: "WLG", City: "Wellington", Name: "Wellington Airport", Country: "New Zealand"},

	// Canada
	{Code: "YYZ", City: "Toronto", Name: "Toronto Pearson International Airport", Country: "Canada"},
	{Code: "YVR", City: "Vancouver", Name: "Vancouver International Airport", Country: "Canada"},
	{Code: "YUL", City: "Montreal", Name: "Montreal-Pierre Elliott Trudeau International Airport", Country: "Canada"},
	{Code: "YYC", City: "Calgary", Name: "Calgary International Airport", Country: "Canada"},
	{Code: "YEG", City: "Edmonton", Name: "Edmonton International Airport", Country: "Canada"},
	{Code: "YOW", City: "Ottawa", Name: "Ottawa Macdonald-Cartier International Airport", Country: "Canada"},

	// South America
	{Code: "GRU", City: "São Paulo", Name: "São Paulo-Guarulhos International Airport", Country: "Brazil"},
	{Code: "GIG", City: "Rio de Janeiro", Name: "Rio de Janeiro-Galeão International Airport", Country: "Brazil"},
	{Code: "EZE", City: "Buenos Aires", Name: "Ministro Pistarini International Airport", Country: "Argentina"},
	{Code: "SCL", City: "Santiago", Name: "Arturo Merino Benítez International Airport", Country: "Chile"},
	{Code: "LIM", City: "Lima", Name: "Jorge Chávez International Airport", Country: "Peru"},
	{Code: "BOG", City: "Bogotá", Name: "El Dorado International Airport", Country: "Colombia"},

	// Africa
	{Code: "JNB", City: "Johannesburg", Name: "O. R. Tambo International Airport", Country: "South Africa"},
	{Code: "CPT", City: "Cape Town", Name: "Cape Town International Airport", Country: "South Africa"},
	{Code: "CAI", City: "Cairo", Name: "Cairo International Airport", Country: "Egypt"},
	{Code: "NBO", City: "Nairobi", Name: "Jomo Kenyatta International Airport", Country: "Kenya"},
	{Code: "LOS", City: "Lagos", Name: "Murtala Muhammed International Airport", Country: "Nigeria"},
	{Code: "CMN", City: "Casablanca", Name: "Mohammed V International Airport", Country: "Morocco"},
}

// cityCodes maps lower-case city names and common aliases to IATA codes.
var cityCodes = map[string]string{
	// India
	"hyderabad":          "HYD",
	"mumbai":             "BOM",
	"delhi":              "DEL",
	"bangalore":          "BLR",
	"chennai":            "MAA",
	"kolkata":            "CCU",
	"pune":               "PNQ",
	"ahmedabad":          "AMD",
	"goa":                "GOI",
	"kochi":              "COK",
	"cochin":             "COK",
	"chandigarh":         "IXC",
	"jaipur":             "JAI",
	"lucknow":            "LKO",
	"vijayawada":         "VGA",
	"visakhapatnam":      "VTZ",
	"vizag":              "VTZ",
	"indore":             "IDR",
	"nagpur":             "NAG",
	"surat":              "STV",
	"coimbatore":         "CJB",
	"trivandrum":         "TRV",
	"thiruvananthapuram": "TRV",
	"bagdogra":           "IXB",
	"guwahati":           "GAU",
	"ranchi":             "IXR",
	"patna":              "PAT",
	"bhubaneswar":        "BBI",
	"port blair":         "IXZ",
	"srinagar":           "SXR",
	"jammu":              "IXJ",
	"agartala":           "IXA",
	"allahabad":          "IXD",
	"raipur":             "RPR",
	"jabalpur":           "JLR",
	"udaipur":            "UDR",
	"jodhpur":            "JDH",
	"vadodara":           "BDQ",
	"baroda":             "BDQ",
	"aurangabad":         "IXU",
	"mangalore":          "IXE",

	// USA
	"new york":        "JFK",
	"los angeles":     "LAX",
	"chicago":         "ORD",
	"san francisco":   "SFO",
	"dallas":          "DFW",
	"miami":           "MIA",
	"seattle":         "SEA",
	"las vegas":       "LAS",
	"atlanta":         "ATL",
	"boston":          "BOS",
	"denver":          "DEN",
	"phoenix":         "PHX",
	"san diego":       "SAN",
	"washington":      "IAD",
	"philadelphia":    "PHL",
	"detroit":         "DTW",
	"minneapolis":     "MSP",
	"baltimore":       "BWI",
	"houston":         "IAH",
	"orlando":         "MCO",
	"tampa":           "TPA",
	"fort lauderdale": "FLL",
	"portland":        "PDX",
	"st louis":        "STL",
	"cleveland":       "CLE",
	"nashville":       "BNA",
	"austin":          "AUS",

	// Europe
	"london":     "LHR",
	"paris":      "CDG",
	"frankfurt":  "FRA",
	"amsterdam":  "AMS",
	"madrid":     "MAD",
	"rome":       "FCO",
	"istanbul":   "IST",
	"berlin":     "BER",
	"munich":     "MUC",
	"düsseldorf": "DUS",
	"hamburg":    "HAM",
	"zurich":     "ZRH",
	"geneva":     "GVA",
	"vienna":     "VIE",
	"brussels":   "BRU",
	"copenhagen": "CPH",
	"stockholm":  "ARN",
	"oslo":       "OSL",
	"helsinki":   "HEL",
	"dublin":     "DUB",
	"edinburgh":  "EDI",
	"manchester": "MAN",
	"barcelona":  "BCN",
	"lisbon":     "LIS",
	"athens":     "ATH",
	"prague":     "PRG",
	"budapest":   "BUD",
	"warsaw":     "WAW",
	"milan":      "MXP",
	"venice":     "VCE",
	"florence":   "FLR",

	// Middle East & Asia
	"dubai":            "DXB",
	"abu dhabi":        "AUH",
	"singapore":        "SIN",
	"bangkok":          "BKK",
	"kuala lumpur":     "KUL",
	"hong kong":        "HKG",
	"tokyo":            "NRT",
	"seoul":            "ICN",
	"beijing":          "PEK",
	"shanghai":         "PVG",
	"guangzhou":        "CAN",
	"shenzhen":         "SZX",
	"chengdu":          "CTU",
	"osaka":            "KIX",
	"doha":             "DOH",
	"riyadh":           "RUH",
	"jeddah":           "JED",
	"manama":           "BAH",
	"kuwait":           "KWI",
	"kuwait city":      "KWI",
	"muscat":           "MCT",
	"jakarta":          "CGK",
	"bali":             "DPS",
	"manila":           "MNL",
	"dhaka":            "DAC",
	"kathmandu":        "KTM",
	"colombo":          "CMB",
	"islamabad":        "ISB",
	"karachi":          "KHI",
	"lahore":           "LHE",
	"hanoi":            "HAN",
	"ho chi minh city": "SGN",
	"saigon":           "SGN",

	// Australia & Oceania
	"sydney":     "SYD",
	"melbourne":  "MEL",
	"brisbane":   "BNE",
	"perth":      "PER",
	"adelaide":   "ADL",
	"auckland":   "AKL",
	"wellington": "WLG",

	// Canada
	"toronto":   "YYZ",
	"vancouver": "YVR",
	"montreal":  "YUL",
	"calgary":   "YYC",
	"edmonton":  "YEG",
	"ottawa":    "YOW",

	// South America
	"são paulo":      "GRU",
	"sao paulo":      "GRU",
	"rio de janeiro": "GIG",
	"rio":            "GIG",
	"buenos aires":   "EZE",
	"santiago":       "SCL",
	"lima":           "LIM",
	"bogotá":         "BOG",
	"bogota":         "BOG",

	// Africa
	"johannesburg": "JNB",
	"cape town":    "CPT",
	"cairo":        "CAI",
	"nairobi":      "NBO",
	"lagos":        "LOS",
	"casablanca":   "CMN",
}
