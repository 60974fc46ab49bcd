package utils

func ToStringSlice(slice []any) []string {
	stringSlice := make([]string, 0)
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}

// CloneStrings returns a copy of s that is never nil.
func CloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
