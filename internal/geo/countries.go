package geo

// countries is the canonical reference list of country names. Origin filters
// are only ever persisted with values from this list (or the compound
// subdivision entries derived below).
var countries = []string{
	"Afghanistan", "Albania", "Algeria", "Andorra", "Angola",
	"Antigua and Barbuda", "Argentina", "Armenia", "Australia", "Austria",
	"Azerbaijan", "Bahamas", "Bahrain", "Bangladesh", "Barbados",
	"Belarus", "Belgium", "Belize", "Benin", "Bhutan",
	"Bolivia", "Bosnia and Herzegovina", "Botswana", "Brazil", "Brunei",
	"Bulgaria", "Burkina Faso", "Burundi", "Cabo Verde", "Cambodia",
	"Cameroon", "Canada", "Central African Republic", "Chad", "Chile",
	"China", "Colombia", "Comoros", "Costa Rica", "Croatia",
	"Cuba", "Cyprus", "Czech Republic", "Democratic Republic of the Congo", "Denmark",
	"Djibouti", "Dominica", "Dominican Republic", "Ecuador", "Egypt",
	"El Salvador", "Equatorial Guinea", "Eritrea", "Estonia", "Eswatini",
	"Ethiopia", "Fiji", "Finland", "France", "Gabon",
	"Gambia", "Georgia", "Germany", "Ghana", "Greece",
	"Grenada", "Guatemala", "Guinea", "Guinea-Bissau", "Guyana",
	"Haiti", "Honduras", "Hungary", "Iceland", "India",
	"Indonesia", "Iran", "Iraq", "Ireland", "Israel",
	"Italy", "Ivory Coast", "Jamaica", "Japan", "Jordan",
	"Kazakhstan", "Kenya", "Kiribati", "Kosovo", "Kuwait",
	"Kyrgyzstan", "Laos", "Latvia", "Lebanon", "Lesotho",
	"Liberia", "Libya", "Liechtenstein", "Lithuania", "Luxembourg",
	"Madagascar", "Malawi", "Malaysia", "Maldives", "Mali",
	"Malta", "Marshall Islands", "Mauritania", "Mauritius", "Mexico",
	"Micronesia", "Moldova", "Monaco", "Mongolia", "Montenegro",
	"Morocco", "Mozambique", "Myanmar", "Namibia", "Nauru",
	"Nepal", "Netherlands", "New Zealand", "Nicaragua", "Niger",
	"Nigeria", "North Korea", "North Macedonia", "Norway", "Oman",
	"Pakistan", "Palau", "Panama", "Papua New Guinea", "Paraguay",
	"Peru", "Philippines", "Poland", "Portugal", "Qatar",
	"Republic of the Congo", "Romania", "Russia", "Rwanda", "Saint Kitts and Nevis",
	"Saint Lucia", "Saint Vincent and the Grenadines", "Samoa", "San Marino", "Sao Tome and Principe",
	"Saudi Arabia", "Senegal", "Serbia", "Seychelles", "Sierra Leone",
	"Singapore", "Slovakia", "Slovenia", "Solomon Islands", "Somalia",
	"South Africa", "South Korea", "South Sudan", "Spain", "Sri Lanka",
	"Sudan", "Suriname", "Sweden", "Switzerland", "Syria",
	"Taiwan", "Tajikistan", "Tanzania", "Thailand", "Timor-Leste",
	"Togo", "Tonga", "Trinidad and Tobago", "Tunisia", "Turkey",
	"Turkmenistan", "Tuvalu", "Uganda", "Ukraine", "United Arab Emirates",
	"United Kingdom", "United States", "Uruguay", "Uzbekistan", "Vanuatu",
	"Vatican City", "Venezuela", "Vietnam", "Yemen", "Zambia",
	"Zimbabwe",
}

// subdivisions lists first-level subdivisions for federated countries where
// an origin filter on the bare country name is too coarse for matching. The
// canonical compound form is "<Country> - <Subdivision>".
var subdivisions = map[string][]string{
	"United States": {
		"Alabama", "Alaska", "Arizona", "Arkansas", "California",
		"Colorado", "Connecticut", "Delaware", "Florida", "Georgia",
		"Hawaii", "Idaho", "Illinois", "Indiana", "Iowa",
		"Kansas", "Kentucky", "Louisiana", "Maine", "Maryland",
		"Massachusetts", "Michigan", "Minnesota", "Mississippi", "Missouri",
		"Montana", "Nebraska", "Nevada", "New Hampshire", "New Jersey",
		"New Mexico", "New York", "North Carolina", "North Dakota", "Ohio",
		"Oklahoma", "Oregon", "Pennsylvania", "Rhode Island", "South Carolina",
		"South Dakota", "Tennessee", "Texas", "Utah", "Vermont",
		"Virginia", "Washington", "West Virginia", "Wisconsin", "Wyoming",
	},
	"Australia": {
		"New South Wales", "Victoria", "Queensland", "Western Australia",
		"South Australia", "Tasmania", "Northern Territory",
		"Australian Capital Territory",
	},
	"Brazil": {
		"Acre", "Alagoas", "Amapa", "Amazonas", "Bahia",
		"Ceara", "Distrito Federal", "Espirito Santo", "Goias", "Maranhao",
		"Mato Grosso", "Mato Grosso do Sul", "Minas Gerais", "Para", "Paraiba",
		"Parana", "Pernambuco", "Piaui", "Rio de Janeiro", "Rio Grande do Norte",
		"Rio Grande do Sul", "Rondonia", "Roraima", "Santa Catarina", "Sao Paulo",
		"Sergipe", "Tocantins",
	},
	"Mexico": {
		"Aguascalientes", "Baja California", "Baja California Sur", "Campeche",
		"Chiapas", "Chihuahua", "Coahuila", "Colima", "Durango", "Guanajuato",
		"Guerrero", "Hidalgo", "Jalisco", "Mexico City", "Michoacan",
		"Morelos", "Nayarit", "Nuevo Leon", "Oaxaca", "Puebla",
		"Queretaro", "Quintana Roo", "San Luis Potosi", "Sinaloa", "Sonora",
		"Tabasco", "Tamaulipas", "Tlaxcala", "Veracruz", "Yucatan", "Zacatecas",
	},
	"Indonesia": {
		"Aceh", "Bali", "Banten", "Bengkulu", "Central Java",
		"Central Kalimantan", "Central Sulawesi", "East Java", "East Kalimantan",
		"East Nusa Tenggara", "Gorontalo", "Jakarta", "Jambi", "Lampung",
		"Maluku", "North Kalimantan", "North Maluku", "North Sulawesi",
		"North Sumatra", "Papua", "Riau", "Riau Islands", "South Kalimantan",
		"South Sulawesi", "South Sumatra", "Southeast Sulawesi", "West Java",
		"West Kalimantan", "West Nusa Tenggara", "West Papua", "West Sulawesi",
		"West Sumatra", "Yogyakarta",
	},
}

// compound builds the canonical "<Country> - <Subdivision>" name.
func compound(country, sub string) string {
	return country + " - " + sub
}
