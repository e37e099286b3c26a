package rules

import (
	"fmt"
	"strings"
	"unicode"
)

// Validate restricts rule conditions to plain comparisons and boolean logic
// over the published trial-state variables. Float literals are fine; member
// access and function calls are not.
func Validate(cond string) error {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return fmt.Errorf("empty condition")
	}

	illegalChars := []rune{'{', '}', '[', ']', ';', ':', '?', '@', '#', '$', '\\'}
	for _, ch := range illegalChars {
		if strings.ContainsRune(cond, ch) {
			return fmt.Errorf("illegal character %q", ch)
		}
	}

	for i := 0; i < len(cond); i++ {
		if cond[i] != '.' {
			continue
		}
		if i > 0 && isIdentByte(cond[i-1]) && !isDigit(cond[i-1]) {
			return fmt.Errorf("member access is not allowed")
		}
		if i+1 < len(cond) && isIdentByte(cond[i+1]) && !isDigit(cond[i+1]) {
			return fmt.Errorf("member access is not allowed")
		}
	}

	for i := 0; i < len(cond)-1; i++ {
		if cond[i] == '(' {
			j := i - 1
			for j >= 0 && unicode.IsSpace(rune(cond[j])) {
				j--
			}
			if j >= 0 && (unicode.IsLetter(rune(cond[j])) || cond[j] == '_') {
				k := j
				for k >= 0 && isIdentByte(cond[k]) {
					k--
				}
				ident := strings.TrimSpace(cond[k+1 : j+1])
				if ident != "" {
					return fmt.Errorf("function calls are not allowed (found %q(...))", ident)
				}
			}
		}
	}

	return nil
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || isDigit(b)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
