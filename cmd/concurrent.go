package cmd

import (
	"sync"

	"github.com/cznic/mathutil"
	"github.com/spf13/viper"
)

// maxConcurrency caps the default worker count when --concurrency is unset.
const maxConcurrency = 64

// workerCount returns --concurrency, or one worker per target up to
// maxConcurrency when it is not positive.
func workerCount(targets int) int {
	concurrency := viper.GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = mathutil.Clamp(targets, 1, maxConcurrency)
	}
	return concurrency
}

// concurrent_helper runs runner over every target with at most concurrency
// workers and returns the results keyed by target.
func concurrent_helper[T any](concurrency int, targets []string, runner func(string) T) map[string]T {
	type hostResult struct {
		Host   string
		Result T
	}
	dataChannel := make(chan string, 1)
	returnChannel := make(chan hostResult, concurrency)
	results := make(map[string]T, len(targets))

	var workers sync.WaitGroup
	workers.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer workers.Done()
			for target := range dataChannel {
				returnChannel <- hostResult{target, runner(target)}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		for r := range returnChannel {
			results[r.Host] = r.Result
		}
		close(done)
	}()

	for _, target := range targets {
		dataChannel <- target
	}
	close(dataChannel)
	workers.Wait()
	close(returnChannel)
	<-done

	return results
}
