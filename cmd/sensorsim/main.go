// Command sensorsim posts synthetic readings the way a field sensor does,
// identified only by its account access id.
package main

import (
	"flag"
	"math/rand"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type reading struct {
	AccessID  string  `json:"accessId"`
	PH        float64 `json:"ph"`
	Turbidity float64 `json:"turbidity"`
	TDS       float64 `json:"tds"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func main() {
	serverURL := flag.String("server", "http://localhost:5000", "server base URL")
	accessID := flag.String("access-id", "", "account access id")
	interval := flag.Duration("interval", 5*time.Second, "time between readings")
	count := flag.Int("count", 0, "number of readings to send (0 sends forever)")
	spike := flag.Float64("spike", 0.1, "probability of an out-of-range pH reading")
	lat := flag.Float64("lat", 17.385, "sensor latitude")
	lng := flag.Float64("lng", 78.4867, "sensor longitude")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if *accessID == "" {
		logger.Fatal("-access-id is required")
	}

	client := resty.New().
		SetBaseURL(*serverURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(time.Second)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for sent := 0; *count == 0 || sent < *count; sent++ {
		r := reading{
			AccessID:  *accessID,
			PH:        6.8 + rng.Float64()*1.4,
			Turbidity: rng.Float64() * 6,
			TDS:       150 + rng.Float64()*400,
			Latitude:  *lat,
			Longitude: *lng,
		}
		if rng.Float64() < *spike {
			r.PH = 9.1 + rng.Float64()
		}

		resp, err := client.R().SetBody(r).Post("/api/user/sensor")
		switch {
		case err != nil:
			logger.Error("Failed to send reading", zap.Error(err))
		case resp.IsError():
			logger.Error("Reading rejected", zap.Int("status", resp.StatusCode()), zap.String("body", resp.String()))
		default:
			logger.Info("Reading sent",
				zap.Float64("ph", r.PH),
				zap.Float64("turbidity", r.Turbidity),
				zap.Float64("tds", r.TDS),
				zap.String("response", resp.String()))
		}

		time.Sleep(*interval)
	}
}
