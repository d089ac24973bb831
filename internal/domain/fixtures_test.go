package domain

const (
	testRegion  = "서울"
	testWeekday = "월"
)

func placeRecord(region, weekday, clock, place string) Record {
	r := Record{Region: region, Weekday: weekday, Time: clock}
	r.Values[Place] = place
	return r
}

func repeatRecord(n int, r Record) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = r
	}
	return out
}

// placeSeries builds a dataset where every record matches testRegion,
// testWeekday at 10:00 and counts[label][i] records carry label in years[i].
func placeSeries(years []int, counts map[string][]int) *Dataset {
	tables := make([]Table, 0, len(years))
	for i, y := range years {
		t := Table{Year: y}
		for label, series := range counts {
			t.Records = append(t.Records, repeatRecord(series[i], placeRecord(testRegion, testWeekday, "10:00", label))...)
		}
		tables = append(tables, t)
	}
	return NewDataset(tables...)
}

// mixedDataset spreads records over regions, weekdays, hours and places so
// that property tests see many non-trivial filters.
func mixedDataset() *Dataset {
	places := DimensionOf(Place).Labels
	regions := []string{"서울", "경기", "부산"}
	var tables []Table
	for y := 2019; y <= 2023; y++ {
		t := Table{Year: y}
		n := 0
		for _, region := range regions {
			for _, day := range Weekdays {
				for h := 6; h < 22; h++ {
					// Vary the volume by year and hour so trends differ per label.
					k := (y-2018)*(h%5) + n%3
					for i := 0; i < k; i++ {
						place := places[(n+i+h)%len(places)]
						t.Records = append(t.Records, placeRecord(region, day, clockAt(h, (i*7)%60), place))
					}
					n++
				}
			}
		}
		// A few malformed times that must never match.
		t.Records = append(t.Records, placeRecord("서울", "월", "", "교실"), placeRecord("서울", "월", "오전", "교실"))
		tables = append(tables, t)
	}
	return NewDataset(tables...)
}

func clockAt(h, m int) string {
	const digits = "0123456789"
	return string([]byte{digits[h/10], digits[h%10], ':', digits[m/10], digits[m%10]})
}
