package analysis

// Stopword sets keyed by language. The Spanish list follows the one shipped
// with common analysis toolkits; the English list is the usual short set.
var stopWordsByLanguage = map[string][]string{
	"spanish": {
		"a", "al", "algo", "algunas", "algunos", "ante", "antes", "como",
		"con", "contra", "cual", "cuando", "de", "del", "desde", "donde",
		"durante", "e", "el", "ella", "ellas", "ellos", "en", "entre",
		"era", "erais", "eran", "eras", "eres", "es", "esa", "esas", "ese",
		"eso", "esos", "esta", "estaba", "estado", "estamos", "estan",
		"estar", "estas", "este", "esto", "estos", "estoy", "fue",
		"fueron", "fui", "fuimos", "ha", "haber", "habia", "han", "has",
		"hasta", "hay", "la", "las", "le", "les", "lo", "los", "mas",
		"me", "mi", "mis", "mucho", "muchos", "muy", "nada", "ni", "no",
		"nos", "nosotros", "nuestra", "nuestras", "nuestro", "nuestros",
		"o", "os", "otra", "otras", "otro", "otros", "para", "pero",
		"poco", "por", "porque", "que", "quien", "quienes", "se", "sea",
		"ser", "si", "sido", "sin", "sobre", "sois", "somos", "son",
		"soy", "su", "sus", "tambien", "tanto", "te", "tenemos", "tener",
		"tengo", "ti", "tiene", "tienen", "todo", "todos", "tu", "tus",
		"un", "una", "uno", "unos", "vosotras", "vosotros", "y", "ya",
		"él", "ésta", "éstas", "éste", "éstos", "última", "últimas",
		"último", "últimos",
	},
	"english": {
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "for",
		"from", "had", "has", "have", "he", "if", "in", "is", "it", "its",
		"no", "not", "of", "on", "or", "so", "that", "the", "their",
		"they", "this", "to", "was", "were", "which", "will", "with",
	},
}
