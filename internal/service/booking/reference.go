package booking

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

var referencePattern = regexp.MustCompile(`^AIR-\d{8}-\d{4}$`)

func ValidReference(ref string) bool {
	return referencePattern.MatchString(ref)
}

type ReferenceSource interface {
	Next() string
}

// ReferenceGenerator draws AIR-YYYYMMDD-NNNN candidates. Uniqueness is left
// to the bookings unique index; callers retry on a clash.
type ReferenceGenerator struct {
	now  func() time.Time
	intn func(int) int
}

func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{now: time.Now, intn: rand.IntN}
}

func (g *ReferenceGenerator) Next() string {
	return fmt.Sprintf("AIR-%s-%04d", g.now().UTC().Format("20060102"), g.intn(10000))
}
