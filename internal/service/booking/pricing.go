package booking

import "github.com/Domenick1991/airbook/internal/domain"

// Base fares per passenger in rupiah.
var baseFares = map[domain.BookingClass]int64{
	domain.BookingClassEconomy:  1_000_000,
	domain.BookingClassBusiness: 2_500_000,
	domain.BookingClassFirst:    5_000_000,
}

const domesticCountry = "Indonesia"

func BaseFare(class domain.BookingClass) int64 {
	return baseFares[class]
}

// CalculatePrice returns base fare × passengers, times 2.5 unless both ends
// are domestic. Every base fare is even, so the result stays integral.
func CalculatePrice(passengers int, class domain.BookingClass, originCountry, destinationCountry string) int64 {
	total := BaseFare(class) * int64(passengers)
	if originCountry == domesticCountry && destinationCountry == domesticCountry {
		return total
	}
	return total * 5 / 2
}
