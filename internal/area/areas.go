package area

// CanonicalAreas is the closed vocabulary of named submarkets. Order matters:
// when an address matches more than one area, the earliest entry wins.
var CanonicalAreas = []string{
	"Jumeirah Village Circle",
	"Business Bay",
	"Dubai Land",
	"Downtown Dubai",
	"Dubai Marina",
	"Mohammed Bin Rashid City",
	"Jumeirah Village Triangle",
	"Deira",
	"Arjan",
	"Dubai Creek Harbour The Lagoons",
	"Dubai Hills Estate",
	"Al Furjan",
	"Dubai Science Park",
	"Dubai Sports City",
	"Al Jaddaf",
	"Palm Jumeirah",
	"Dubai Harbour",
	"Jumeirah Lake Towers",
	"City of Arabia",
	"Dubai Production City IMPZ",
	"Dubai Land Residence Complex",
	"Dubai South Dubai World Central",
	"Dubai Investment Park DIP",
	"Maritime City",
	"Meydan",
	"Dubai Studio City",
	"Dubai Silicon Oasis",
	"Al Satwa",
	"Motor City",
	"Jumeirah Beach Residence",
	"DAMAC Hills",
	"Town Square",
	"Bukadra",
	"Al Warsan",
	"Wasl Gate",
	"City Walk",
	"Zabeel",
	"Umm Suqeim",
	"Al Wasl",
	"International City",
	"Mina Rashid",
	"Jebel Ali",
	"Expo City",
	"Damac Lagoons",
	"Bluewaters",
	"DIFC",
	"Downtown Jebel Ali",
	"Jumeirah",
	"Damac Hills",
	"Discovery Gardens",
	"Sheikh Zayed Road",
	"Al Barsha",
	"Nad Al Sheba",
	"Ras Al Khor",
	"Barsha Heights Tecom",
	"Culture Village",
	"Greens",
	"Old Town",
	"Mirdif",
	"The Views",
	"Dubai Design District",
	"Al Sufouh",
	"Dubai Industrial City",
	"Jumeirah Islands",
	"Living Legends",
	"Dubai Media City",
	"Al Safa",
	"Dubai Internet City",
	"Emirates Hills",
	"The World Islands",
	"Jumeirah Golf Estates",
	"Falcon City of Wonders",
	"Al Quoz",
	"Dubai Festival City",
	"The Hills",
	"Al Muhaisnah",
	"Al Yelayiss",
	"Al Barari",
	"Bur Dubai",
	"World Trade Center",
	"Mudon",
	"The Valley",
	"Wadi Al Safa",
	"Dubai Waterfront",
	"DuBiotech",
	"The Oasis by Emaar",
	"Nadd Al Hammar",
	"Al Qusais",
	"Arabian Ranches",
	"Palm Jebel Ali",
	"Al Nahda",
	"Tilal Al Ghaf",
	"Mohammad Bin Rashid Gardens",
}

// Abbreviation maps a short token commonly seen in scraped addresses to its
// canonical area name.
type Abbreviation struct {
	Token string
	Area  string
}

// Abbreviations are probed in order after the full-name pass fails.
var Abbreviations = []Abbreviation{
	{Token: "jvc", Area: "Jumeirah Village Circle"},
	{Token: "jvt", Area: "Jumeirah Village Triangle"},
	{Token: "jlt", Area: "Jumeirah Lake Towers"},
	{Token: "jbr", Area: "Jumeirah Beach Residence"},
	{Token: "impz", Area: "Dubai Production City IMPZ"},
	{Token: "dip", Area: "Dubai Investment Park DIP"},
	{Token: "tecom", Area: "Barsha Heights Tecom"},
	{Token: "dlrc", Area: "Dubai Land Residence Complex"},
	{Token: "dsf", Area: "Dubai Sports City"},
	{Token: "dsc", Area: "Dubai Studio City"},
	{Token: "dso", Area: "Dubai Silicon Oasis"},
	{Token: "dmc", Area: "Dubai Media City"},
	{Token: "dic", Area: "Dubai Internet City"},
	{Token: "dwc", Area: "Dubai South Dubai World Central"},
}
