package sqlbuild_test

import (
	"strconv"
	"strings"
)

func splitClauses(sql string) []string { return strings.Split(sql, ", ") }

func itoa(i int) string { return strconv.Itoa(i) }
