// README: Curated Cairo area alias table (spellings + transliterations).
package matching

// areaAlias maps a canonical area name to its accepted variants. The
// table is read-only at runtime. Declaration order matters: overlapping
// aliases resolve to whichever canonical entry is declared first.
type areaAlias struct {
	canonical string
	aliases   []string
}

var areaAliases = []areaAlias{
	{"ramses", []string{"ramses", "رمسيس", "ramsis", "mahatet masr", "train station"}},
	{"tahrir", []string{"tahrir", "التحرير", "tahrer", "midan tahrir"}},
	{"giza", []string{"giza", "الجيزة", "gizah", "pyramids area"}},
	{"maadi", []string{"maadi", "المعادي", "maady", "maadi degla"}},
	{"heliopolis", []string{"heliopolis", "مصر الجديدة", "masr el gedida", "misr el gedida"}},
	{"nasr city", []string{"nasr city", "مدينة نصر", "nasr", "madinet nasr"}},
	{"mohandessin", []string{"mohandessin", "المهندسين", "mohandiseen", "mohandseen"}},
	{"dokki", []string{"dokki", "الدقي", "doki", "doqqi"}},
	{"shubra", []string{"shubra", "شبرا", "shoubra", "shobra"}},
	{"zamalek", []string{"zamalek", "الزمالك", "zamalak"}},
	{"downtown", []string{"downtown", "وسط البلد", "wust el balad", "ataba", "opera"}},
	{"6th october", []string{"6th october", "6 october", "السادس من أكتوبر", "october", "6 اكتوبر"}},
	{"new cairo", []string{"new cairo", "القاهرة الجديدة", "tagamoa", "التجمع", "rehab", "fifth settlement"}},
	{"helwan", []string{"helwan", "حلوان", "heloan"}},
	{"ain shams", []string{"ain shams", "عين شمس", "ein shams"}},
	{"abbassia", []string{"abbassia", "العباسية", "abbasia", "abasseya"}},
	{"imbaba", []string{"imbaba", "إمبابة", "embaba"}},
	{"dar el salam", []string{"dar el salam", "دار السلام", "dar alsalam"}},
	{"zeitoun", []string{"zeitoun", "الزيتون", "zaytoun", "zaitoun"}},
	{"ataba", []string{"ataba", "العتبة", "attaba"}},
}
