package api

// requiredPairs — хотя бы одна пара должна быть передана целиком.
var requiredPairs = [][2]string{
	{"phone", "email"},
	{"first_name", "last_name"},
	{"gender", "birthday"},
}

// PairOK проверяет правило пар для online_score: has должен содержать
// обе половины хотя бы одной пары.
func PairOK(has []string) bool {
	set := make(map[string]struct{}, len(has))
	for _, name := range has {
		set[name] = struct{}{}
	}
	for _, pair := range requiredPairs {
		_, a := set[pair[0]]
		_, b := set[pair[1]]
		if a && b {
			return true
		}
	}
	return false
}
