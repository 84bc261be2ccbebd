package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	BookIDPrefix     = "B"
	CategoryIDPrefix = "C"
	MemberIDPrefix   = "M"
	UserIDPrefix     = "U"
	RequestIDPrefix  = "R"
	IssueIDPrefix    = "I"

	idWidth = 3
)

var externalMemberID = regexp.MustCompile(`^ENT\d{4}$`)

// NextID returns prefix followed by the highest numeric suffix among ids with that prefix plus one,
// zero-padded to three digits. Ids with a different prefix or a non-numeric suffix are ignored.
func NextID(prefix string, ids []string) string {
	highest := 0

	for _, id := range ids {
		suffix, ok := strings.CutPrefix(id, prefix)
		if !ok || suffix == "" {
			continue
		}

		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 {
			continue
		}

		highest = max(highest, n)
	}

	return fmt.Sprintf("%s%0*d", prefix, idWidth, highest+1)
}

// IsExternalMemberID reports whether id has the ENT#### shape used for externally registered members.
func IsExternalMemberID(id string) bool {
	return externalMemberID.MatchString(id)
}
