// Package fleet implements the Fleet Runner: a bounded worker pool that
// fans a per-device task out across the requested device set and fans the
// per-device outcomes back in, grounded on the other_examples MERALCO
// health-check logger's Worker/channel pool (feeder goroutine populates and
// closes a device channel, N workers drain it and push results to a result
// channel, a closer goroutine waits on a sync.WaitGroup then closes the
// result channel) combined with the teacher's parallelForNodes mutex-guarded
// bookkeeping style.
package fleet

import (
	"fmt"
	"sync"

	"github.com/sebmaj/netcat-go/pkg/util"
)

// DefaultMaxWorkers mirrors the original's MAX_WORKERS: empirically chosen
// for a 4-core / 4 GB host at ~50% average load.
const DefaultMaxWorkers = 120

// Job is the per-device task a Run call fans out. A non-nil error marks the
// device failed; the device name is otherwise recorded successful.
type Job func(deviceName string) error

// Result is the Fleet Runner's aggregate report: requested is every device
// name the caller asked for, successful is the subset whose Job returned
// nil, failed is requested minus successful. The aggregate is informational
// only — a job always attempts every requested device regardless of any
// individual failure.
type Result struct {
	Requested  []string
	Successful []string
	Failed     []string
}

// Run executes job once per name in deviceNames, bounded to maxWorkers
// concurrent workers (DefaultMaxWorkers if maxWorkers <= 0). singleWorker
// forces strictly sequential execution on the calling goroutine, matching
// the original's SINGLE_PROCESS_MODE debug toggle — useful for driving a
// job under a debugger where concurrent CLI sessions would interleave their
// log output unreadably.
//
// A worker's session is isolated from every other worker's: a panic or
// error from one device's Job is caught and recorded as that device's
// failure and never aborts the pool, matching the original's
// exception_handler decorator silently swallowing per-device exceptions
// rather than letting one bad device kill the whole fleet.
func Run(deviceNames []string, maxWorkers int, singleWorker bool, job Job) Result {
	result := Result{Requested: append([]string(nil), deviceNames...)}
	if len(deviceNames) == 0 {
		return result
	}

	if singleWorker {
		for _, name := range deviceNames {
			if runOne(name, job) {
				result.Successful = append(result.Successful, name)
			} else {
				result.Failed = append(result.Failed, name)
			}
		}
		return result
	}

	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	if maxWorkers > len(deviceNames) {
		maxWorkers = len(deviceNames)
	}

	deviceChan := make(chan string, len(deviceNames))
	resultChan := make(chan workerResult, len(deviceNames))

	var wg sync.WaitGroup
	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go worker(i+1, &wg, deviceChan, resultChan, job)
	}

	go func() {
		for _, name := range deviceNames {
			deviceChan <- name
		}
		close(deviceChan)
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var mu sync.Mutex
	for r := range resultChan {
		mu.Lock()
		if r.ok {
			result.Successful = append(result.Successful, r.deviceName)
		} else {
			result.Failed = append(result.Failed, r.deviceName)
		}
		mu.Unlock()
	}

	return result
}

type workerResult struct {
	deviceName string
	ok         bool
}

func worker(id int, wg *sync.WaitGroup, devices <-chan string, results chan<- workerResult, job Job) {
	defer wg.Done()
	for name := range devices {
		ok := runOne(name, job)
		results <- workerResult{deviceName: name, ok: ok}
		if !ok {
			util.WithField("worker", id).Warnf("fleet: device %s failed", name)
		}
	}
}

// runOne invokes job for name, converting a panic into a failure instead of
// letting it escape the worker goroutine and crash the pool.
func runOne(name string, job Job) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			util.Errorf("fleet: device %s panicked: %v", name, r)
			ok = false
		}
	}()

	if err := job(name); err != nil {
		util.Errorf("fleet: device %s: %v", name, err)
		return false
	}
	return true
}

// String renders a Result for operator-facing summary logging.
func (r Result) String() string {
	return fmt.Sprintf("requested=%d successful=%d failed=%d", len(r.Requested), len(r.Successful), len(r.Failed))
}
