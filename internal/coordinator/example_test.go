package coordinator_test

import (
	"context"
	"fmt"
	"time"

	"csmc/internal/config"
	"csmc/internal/coordinator"
	"csmc/internal/core"
)

func ExampleNew() {
	cfg := config.Default()
	cfg.Center = config.CenterConfig{Students: 3, Tutors: 1, Seats: 1, Helps: 2}

	// A fake clock makes every sleep instant.
	clock := core.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	coord, err := coordinator.New(cfg, coordinator.WithClock(clock))
	if err != nil {
		fmt.Println(err)
		return
	}

	res, err := coord.Run(context.Background())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("finished %d/%d, seat takes %d, occupied %d\n",
		res.Snapshot.Finished, res.Snapshot.Students, res.Snapshot.SeatTakes, res.Snapshot.Occupied)
	// Output: finished 3/3, seat takes 6, occupied 0
}
