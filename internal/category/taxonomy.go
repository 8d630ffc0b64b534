package category

import "fmt"

type bucket struct {
	name   string
	labels []string
}

// taxonomy lists every known upstream label per bucket. Label lists must stay
// disjoint; init panics otherwise.
var taxonomy = []bucket{
	{"Bolig, Have & Gør-det-selv", []string{
		"home, garden & interior",
		"construction & garden",
		"home & interior",
		"living, house & garden",
		"home & utility",
		"hobbies & recreation",
		"garden & construction",
		"gør-det-selv og hobby",
		"bolig, have og interiør",
	}},
	{"Køretøjer & Transport", []string{
		"car, motorcycle, cycling & boat",
		"car & motor",
		"cars & motorbikes",
		"automotive",
		"bil, mc, cykling og båd",
	}},
	{"Sport, Dyr, Outdoor, Sundhed & Beauty", []string{
		"sport & fitness",
		"outdoor, nature & animals",
		"sports & outdoor",
		"health & personal care",
		"health & beauty",
		"sports, beauty & health",
		"outdoor, natur og dyr",
		"sport og fitness",
		"sundhed og personlig pleje",
	}},
	{"Tøj, Mode & Accessoires", []string{
		"clothing & accessories",
		"fashion & lifestyle",
		"fashion",
		"tøj og accessories",
	}},
	{"Baby, Børn & Forældre", []string{
		"baby, children & teenagers",
		"children & family",
		"parenting",
		"family & kids",
		"baby, børn og teenager",
	}},
	{"Elektronik & Teknologi", []string{
		"computer & electronics",
		"electronics & technology",
		"consumer electronics",
		"telephony & internet",
		"computer og elektronik",
	}},
	{"Telefoni, internet, Underholdning, Medie & Spil", []string{
		"music & film",
		"home entertainment",
		"games & esports",
		"streaming, apps & mobile",
		"musik og film",
		"media & telecom",
		"telecom",
		"telefoni og internet",
	}},
	{"Mad, Drikke & Fest", []string{
		"food, drinks & party",
		"food & drink",
		"mad, drikke og fest",
	}},
	{"Dating & Voksen", []string{
		"dating",
		"games & dating",
		"erotic & sex",
		"adult",
		"spil og dating",
		"erotik og sex",
	}},
	{"Rejser & Oplevelser", []string{
		"vacation & experiences",
		"travel & accomodation",
		"travel & leisure",
		"ferie og oplevelser",
	}},
	{"Arbejde & Uddannelse", []string{
		"job, education & development",
		"work & education",
		"job, uddannelse, udvikling",
	}},
	{"Bøger, Litteratur & Kunst", []string{
		"books & art",
		"books, magazines & newspapers",
		"books, literature & media",
		"bøger og kunst",
	}},
	{"Penge & Forsikring", []string{
		"insurance",
		"insurance & unemployment fund",
		"insurance & pension",
		"money & insurance",
		"penge og forsikring",
	}},
	{"Finans & Krypto", []string{
		"banking & finance",
		"loans",
		"microloans",
		"crypto",
		"finance",
		"payday loans",
	}},
	{"B2B", []string{
		"business-to-business",
	}},
	{"Shopping & Gaver", []string{
		"shopping & gifts",
		"gifts & flowers",
		"daily deals & auctions",
		"retail & shopping",
		"shopping og gaver",
	}},
	{"Undersøgelser & Markedsføring", []string{
		"surveys",
		"research panels & surveys",
	}},
	{"Non-Profit & Velgørenhed", []string{
		"non profit & charity",
	}},
	{"Energi & Utility", []string{
		"energy",
	}},
	{"Bæredygtighed & Miljø", []string{
		"sustainable",
	}},
	{"Lodtrækninger og Konkurrencer", []string{
		"leadshare / leadreward",
		"orderfeed",
		"competitions",
		"lotteries & gambling",
		"gambling",
	}},
}

var index = buildIndex(taxonomy)

func buildIndex(buckets []bucket) map[string]string {
	idx := make(map[string]string)
	for _, b := range buckets {
		for _, label := range b.labels {
			if prev, dup := idx[label]; dup {
				panic(fmt.Sprintf("category label %q listed under both %q and %q", label, prev, b.name))
			}
			idx[label] = b.name
		}
	}
	return idx
}
