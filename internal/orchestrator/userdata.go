// File: internal/orchestrator/userdata.go
package orchestrator

import (
	"fmt"
	mrand "math/rand"
	"strings"
	"time"
	"unicode"
)

// Request is the normalized, validated input of one automation run. Derived
// fields are computed once by the Generator and frozen for the rest of the
// run.
type Request struct {
	Email            string
	FullName         string
	Username         string
	Password         string
	Birthdate        string // YYYY-MM-DD
	LocaleCountry    string
	VerificationCode string
	KeepSession      bool
	BrowserPaymentTx string
}

// Credentials is the frozen set of signup values actually typed into the form.
type Credentials struct {
	Email     string
	FullName  string
	Username  string
	Password  string
	Birthdate Birthdate
}

// Birthdate is a concrete calendar date fed into the month/day/year selects.
type Birthdate struct {
	Year  int
	Month int
	Day   int
}

// Password generation parameters. The charset omits ambiguous characters
// (0/O, 1/l/I) so generated credentials survive manual re-entry.
const (
	passwordLength  = 14
	passwordCharset = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ23456789!#$%&*"
)

// Default birthdate ages: a generated account is 21 to 29 years old.
const (
	minAccountAge = 21
	maxAccountAge = 29
)

// Generator derives missing request fields. All randomness flows from the
// injected source so runs are deterministic under test; the zero-value
// time function defaults to time.Now.
type Generator struct {
	rng *mrand.Rand
	now func() time.Time
}

// NewGenerator builds a generator over the given random source. A nil rng
// gets a time-seeded source.
func NewGenerator(rng *mrand.Rand) *Generator {
	if rng == nil {
		rng = mrand.New(mrand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng, now: time.Now}
}

// Derive fills every missing field of the request and returns the frozen
// credentials. Explicit caller values always win over generated ones.
func (g *Generator) Derive(req Request) Credentials {
	creds := Credentials{
		Email:    req.Email,
		FullName: req.FullName,
		Username: req.Username,
		Password: req.Password,
	}

	base := emailLocalPart(req.Email)

	if creds.FullName == "" {
		creds.FullName = deriveFullName(base)
	}
	if creds.Username == "" {
		creds.Username = fmt.Sprintf("%s%04d", sanitizeUsernameBase(base), g.rng.Intn(10000))
	}
	if creds.Password == "" {
		creds.Password = g.generatePassword()
	}
	creds.Birthdate = g.deriveBirthdate(req.Birthdate)

	return creds
}

// generatePassword draws passwordLength characters uniformly from the charset.
func (g *Generator) generatePassword() string {
	b := make([]byte, passwordLength)
	for i := range b {
		b[i] = passwordCharset[g.rng.Intn(len(passwordCharset))]
	}
	return string(b)
}

// deriveBirthdate parses an explicit YYYY-MM-DD value, or fabricates a date
// for an account aged between minAccountAge and maxAccountAge inclusive.
// Generated days stop at 28 so the date is valid in every month.
func (g *Generator) deriveBirthdate(explicit string) Birthdate {
	if explicit != "" {
		if t, err := time.Parse("2006-01-02", explicit); err == nil {
			return Birthdate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
		}
	}
	age := minAccountAge + g.rng.Intn(maxAccountAge-minAccountAge+1)
	return Birthdate{
		Year:  g.now().Year() - age,
		Month: 1 + g.rng.Intn(12),
		Day:   1 + g.rng.Intn(28),
	}
}

func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at >= 0 {
		return email[:at]
	}
	return email
}

// sanitizeUsernameBase lowercases the base and strips everything that is not
// a letter or digit.
func sanitizeUsernameBase(base string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

// deriveFullName splits the email local part on common separators and
// title-cases the words: "a.b" becomes "A B".
func deriveFullName(base string) string {
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	for i, w := range words {
		words[i] = titleWord(w)
	}
	if len(words) == 0 {
		return "New User"
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	runes := []rune(strings.ToLower(w))
	if len(runes) == 0 {
		return w
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
