package util

func IfEmptyElse(str string, def string) string {
	if str == "" {
		return def
	}
	return str
}
