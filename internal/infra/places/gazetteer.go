package places

// gazetteer is the built-in list of well-known cities.
var gazetteer = []string{
	// Europe
	"Amsterdam", "Athens", "Barcelona", "Belgrade", "Berlin", "Bern", "Bratislava",
	"Brussels", "Bucharest", "Budapest", "Copenhagen", "Dublin", "Edinburgh",
	"Florence", "Frankfurt", "Geneva", "Hamburg", "Helsinki", "Istanbul", "Kyiv",
	"Lisbon", "Ljubljana", "London", "Lyon", "Madrid", "Manchester", "Marseille",
	"Milan", "Moscow", "Munich", "Naples", "Oslo", "Paris", "Porto", "Prague",
	"Reykjavik", "Riga", "Rome", "Rotterdam", "Saint Petersburg", "Seville",
	"Sofia", "Stockholm", "Tallinn", "Valencia", "Venice", "Vienna", "Vilnius",
	"Warsaw", "Zagreb", "Zurich",

	// North America
	"Atlanta", "Austin", "Boston", "Calgary", "Chicago", "Dallas", "Denver",
	"Detroit", "Havana", "Honolulu", "Houston", "Las Vegas", "Los Angeles",
	"Mexico City", "Miami", "Minneapolis", "Montreal", "Nashville", "New Orleans",
	"New York", "Ottawa", "Philadelphia", "Phoenix", "Portland", "San Diego",
	"San Francisco", "Seattle", "Toronto", "Vancouver", "Washington",

	// South America
	"Bogota", "Buenos Aires", "Caracas", "Lima", "Montevideo", "Quito",
	"Rio de Janeiro", "Santiago", "Sao Paulo",

	// Africa and the Middle East
	"Abu Dhabi", "Accra", "Addis Ababa", "Algiers", "Cairo", "Cape Town", "Casablanca",
	"Dakar", "Doha", "Dubai", "Jerusalem", "Johannesburg", "Lagos", "Nairobi",
	"Riyadh", "Tehran", "Tel Aviv", "Tunis",

	// Asia and Oceania
	"Auckland", "Bangalore", "Bangkok", "Beijing", "Brisbane", "Busan", "Chennai",
	"Delhi", "Dhaka", "Hanoi", "Ho Chi Minh City", "Hong Kong", "Jakarta", "Karachi",
	"Kathmandu", "Kolkata", "Kuala Lumpur", "Kyoto", "Lahore", "Manila", "Melbourne",
	"Mumbai", "Osaka", "Perth", "Sapporo", "Seoul", "Shanghai", "Singapore", "Sydney",
	"Taipei", "Tokyo", "Wellington",
}
