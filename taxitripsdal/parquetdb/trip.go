package parquetdb

import (
	"math/rand"
	"time"
)

// Trip is one yellow taxi trip record, as laid out in trips_schema.json.
// Timestamps are microseconds since the unix epoch. Nil fields are written as nulls.
type Trip struct {
	VendorID            *int64   `json:"VendorID"`
	PickupDatetime      *int64   `json:"tpep_pickup_datetime"`
	DropoffDatetime     *int64   `json:"tpep_dropoff_datetime"`
	PassengerCount      *float64 `json:"passenger_count"`
	TripDistance        *float64 `json:"trip_distance"`
	RatecodeID          *float64 `json:"RatecodeID"`
	StoreAndForwardFlag *string  `json:"store_and_fwd_flag"`
	PULocationID        *int64   `json:"PULocationID"`
	DOLocationID        *int64   `json:"DOLocationID"`
	PaymentType         *int64   `json:"payment_type"`
	FareAmount          *float64 `json:"fare_amount"`
	TipAmount           *float64 `json:"tip_amount"`
	TotalAmount         *float64 `json:"total_amount"`
}

// TripColumnCount is the amount of columns a trips file written by TripsWriter has
const TripColumnCount = 13

var sampleStartTime = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// GenerateSampleTrips creates count synthetic trips. The same seed always gives the same trips.
func GenerateSampleTrips(count int, seed int64) []*Trip {
	random := rand.New(rand.NewSource(seed))

	var trips []*Trip
	for i := 0; i < count; i++ {
		pickup := sampleStartTime.Add(time.Duration(i) * 37 * time.Second)
		dropoff := pickup.Add(time.Duration(3+random.Intn(40)) * time.Minute)

		distance := roundCents(0.3 + random.Float64()*15)
		fare := roundCents(3 + distance*2.5)
		tip := roundCents(fare * 0.2 * random.Float64())

		trip := &Trip{
			VendorID:        int64Ptr(int64(1 + random.Intn(2))),
			PickupDatetime:  int64Ptr(pickup.UnixNano() / int64(time.Microsecond)),
			DropoffDatetime: int64Ptr(dropoff.UnixNano() / int64(time.Microsecond)),
			TripDistance:    float64Ptr(distance),
			PULocationID:    int64Ptr(int64(1 + random.Intn(265))),
			DOLocationID:    int64Ptr(int64(1 + random.Intn(265))),
			PaymentType:     int64Ptr(int64(1 + random.Intn(4))),
			FareAmount:      float64Ptr(fare),
			TipAmount:       float64Ptr(tip),
			TotalAmount:     float64Ptr(roundCents(fare + tip + 1)),
		}

		// the real data has trips without passenger/rate information every so often
		if random.Intn(40) != 0 {
			trip.PassengerCount = float64Ptr(float64(random.Intn(7)))
			trip.RatecodeID = float64Ptr(1)
			trip.StoreAndForwardFlag = stringPtr("N")
		}

		trips = append(trips, trip)
	}

	return trips
}

func roundCents(value float64) float64 {
	return float64(int64(value*100+0.5)) / 100
}

func int64Ptr(v int64) *int64 {
	return &v
}

func float64Ptr(v float64) *float64 {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
