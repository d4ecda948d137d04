package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CourseCodeTag is the binding tag that checks course code shape.
const CourseCodeTag = "curriculum_code"

var (
	// One token of letters, digits and . _ / - separators, e.g. CS101, TCHEM212, CS-101, MATH.1010.
	// Codes are whitespace free because prerequisite expressions split on spaces.
	CourseCodePattern = `^[A-Z0-9][A-Z0-9._/-]{0,31}$`

	PasswordMinLength   = 8
	CourseNameMaxLength = 255
	MaxCredits          = 60
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	CourseCode *regexp.Regexp
}{
	CourseCode: regexp.MustCompile(CourseCodePattern),
}

// NormalizeCourseCode upper-cases and trims a course code.
func NormalizeCourseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsCourseCode reports whether code is a well formed course code once normalized.
func IsCourseCode(code string) bool {
	return CompiledPatterns.CourseCode.MatchString(NormalizeCourseCode(code))
}

// CourseCode is the validator.Func behind CourseCodeTag.
func CourseCode(fl validator.FieldLevel) bool {
	return IsCourseCode(fl.Field().String())
}

// Register installs the custom rules on v.
func Register(v *validator.Validate) error {
	return v.RegisterValidation(CourseCodeTag, CourseCode)
}
