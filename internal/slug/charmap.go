package slug

// charMap transliterates symbols and letters that have no useful canonical
// decomposition. Output keeps the case of the input; Make lowercases last.
var charMap = map[rune]string{
	// symbols
	'$': "dollar", '%': "percent", '&': "and", '<': "less", '>': "greater", '|': "or",
	'¢': "cent", '£': "pound", '¤': "currency", '¥': "yen", '©': "(c)", 'ª': "a",
	'®': "(r)", 'º': "o", '€': "euro", '™': "tm", '∑': "sum", '∞': "infinity", '♥': "love",

	// latin
	'Æ': "AE", 'æ': "ae", 'Ð': "D", 'ð': "d", 'Đ': "DJ", 'đ': "dj",
	'Ø': "O", 'ø': "o", 'Œ': "OE", 'œ': "oe", 'Þ': "TH", 'þ': "th", 'ß': "ss",
	'Ł': "L", 'ł': "l", 'ı': "i", 'Ħ': "H", 'ħ': "h", 'Ŧ': "T", 'ŧ': "t",

	// greek
	'Α': "A", 'Β': "B", 'Γ': "G", 'Δ': "D", 'Ε': "E", 'Ζ': "Z", 'Η': "H", 'Θ': "8",
	'Ι': "I", 'Κ': "K", 'Λ': "L", 'Μ': "M", 'Ν': "N", 'Ξ': "3", 'Ο': "O", 'Π': "P",
	'Ρ': "R", 'Σ': "S", 'Τ': "T", 'Υ': "Y", 'Φ': "F", 'Χ': "X", 'Ψ': "PS", 'Ω': "W",
	'Ά': "A", 'Έ': "E", 'Ί': "I", 'Ό': "O", 'Ύ': "Y", 'Ή': "H", 'Ώ': "W", 'Ϊ': "I", 'Ϋ': "Y",
	'α': "a", 'β': "b", 'γ': "g", 'δ': "d", 'ε': "e", 'ζ': "z", 'η': "h", 'θ': "8",
	'ι': "i", 'κ': "k", 'λ': "l", 'μ': "m", 'ν': "n", 'ξ': "3", 'ο': "o", 'π': "p",
	'ρ': "r", 'σ': "s", 'ς': "s", 'τ': "t", 'υ': "y", 'φ': "f", 'χ': "x", 'ψ': "ps", 'ω': "w",
	'ά': "a", 'έ': "e", 'ί': "i", 'ό': "o", 'ύ': "y", 'ή': "h", 'ώ': "w",
	'ϊ': "i", 'ϋ': "y", 'ΐ': "i", 'ΰ': "y",

	// cyrillic
	'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Е': "E", 'Ё': "Yo", 'Ж': "Zh",
	'З': "Z", 'И': "I", 'Й': "J", 'К': "K", 'Л': "L", 'М': "M", 'Н': "N", 'О': "O",
	'П': "P", 'Р': "R", 'С': "S", 'Т': "T", 'У': "U", 'Ф': "F", 'Х': "H", 'Ц': "C",
	'Ч': "Ch", 'Ш': "Sh", 'Щ': "Sh", 'Ъ': "U", 'Ы': "Y", 'Ь': "", 'Э': "E", 'Ю': "Yu", 'Я': "Ya",
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo", 'ж': "zh",
	'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o",
	'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "h", 'ц': "c",
	'ч': "ch", 'ш': "sh", 'щ': "sh", 'ъ': "u", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	'Є': "Ye", 'І': "I", 'Ї': "Yi", 'Ґ': "G", 'є': "ye", 'і': "i", 'ї': "yi", 'ґ': "g",
	'Ђ': "DJ", 'ђ': "dj", 'Ј': "J", 'ј': "j", 'Љ': "LJ", 'љ': "lj", 'Њ': "NJ", 'њ': "nj",
	'Ћ': "C", 'ћ': "c", 'Џ': "DZ", 'џ': "dz",
}
