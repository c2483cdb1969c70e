package roster

// tekken7Characters is the Tekken 7 roster, including DLC.
var tekken7Characters = []string{
	"Akuma", "Alisa", "Asuka", "Bob", "Bryan", "Claudio", "Devil Jin", "Dragunov",
	"Eddy", "Eliza", "Feng", "Geese", "Gigas", "Heihachi", "Hwoarang", "Jack-7", "Jin",
	"Josie", "Katarina", "Kazumi", "Kazuya", "King", "Kuma", "Lars", "Law", "Lee", "Lei",
	"Leo", "Lili", "Lucky Chloe", "Master Raven", "Miguel", "Nina", "Noctis", "Paul",
	"Shaheen", "Steve", "Xiaoyu", "Yoshimitsu",
}

// tekken7Ranks lists the online ranks from Beginner up to Tekken God Omega.
var tekken7Ranks = []string{
	"Beginner",
	"9th Kyu", "8th Kyu", "7th Kyu", "6th Kyu", "5th Kyu",
	"4th Kyu", "3rd Kyu", "2nd Kyu", "1st Kyu",
	"1st Dan", "2nd Dan", "3rd Dan",
	"Initiate", "Mentor", "Expert", "Grand Master",
	"Brawler", "Marauder", "Fighter", "Vanguard",
	"Warrior", "Vindicator", "Juggernaut", "Usurper",
	"Vanquisher", "Destroyer", "Savior", "Overlord",
	"Genbu", "Byakko", "Seiryu", "Suzaku",
	"Mighty Ruler", "Revered Ruler", "Divine Ruler", "Eternal Ruler",
	"Fujin", "Raijin", "Kishin", "Bushin",
	"Tekken King", "Tekken Emperor", "Tekken God", "Tekken God Prime", "Tekken God Omega",
}

// tekken7Regions are the matchmaking regions a player can list.
var tekken7Regions = []string{
	"Asia", "Europe", "Middle East", "North America", "Oceania", "South America", "Africa",
}

// Default returns a fresh Tekken 7 catalog. The built-in lists are only
// reachable through the catalog accessors, which return copies.
func Default() *Catalog {
	c, err := New(tekken7Characters, tekken7Ranks, tekken7Regions)
	if err != nil {
		panic("roster: built-in catalog invalid: " + err.Error())
	}
	return c
}
