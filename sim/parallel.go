package sim

import (
	"math/rand"
	"runtime"
	"sync"
)

// parallelThreshold is the minimum agent count to use parallel motion.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// workChunk is a contiguous range of agents. Chunk i always uses rngs[i], so the
// random stream an agent sees does not depend on which worker picks the chunk up.
type workChunk struct {
	start, end int
	chunk      int
	params     motionParams
}

// motionPool runs agent motion across persistent worker goroutines.
type motionPool struct {
	numWorkers int
	rngs       []*rand.Rand

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// newMotionPool creates a pool with one RNG per chunk, seeded from src.
// workers <= 0 uses GOMAXPROCS.
func newMotionPool(workers int, src *rand.Rand) *motionPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rngs := make([]*rand.Rand, workers)
	for i := range rngs {
		rngs[i] = rand.New(rand.NewSource(src.Int63()))
	}
	return &motionPool{
		numWorkers: workers,
		rngs:       rngs,
	}
}

// startWorkers launches persistent worker goroutines.
func (p *motionPool) startWorkers(s *Simulation) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(s)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *motionPool) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker processes chunks until stopped.
func (p *motionPool) worker(s *Simulation) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case c, ok := <-p.workChan:
			if !ok {
				return
			}
			s.moveChunk(c.start, c.end, c.params, p.rngs[c.chunk])
			p.doneChan <- struct{}{}
		}
	}
}

// moveAgents runs motion for every agent against the pre-step field. Agents only
// write their own slot, so chunks never contend.
func (s *Simulation) moveAgents(mp motionParams) {
	n := len(s.agents)
	if n == 0 {
		return
	}

	if n < parallelThreshold {
		s.moveChunk(0, n, mp, s.pool.rngs[0])
		return
	}

	if !s.pool.running {
		s.pool.startWorkers(s)
	}

	numWorkers := s.pool.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	dispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		s.pool.workChan <- workChunk{start: start, end: end, chunk: w, params: mp}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-s.pool.doneChan
	}
}

// moveChunk updates agents [i0, i1).
func (s *Simulation) moveChunk(i0, i1 int, mp motionParams, rng *rand.Rand) {
	for i := i0; i < i1; i++ {
		updateAgent(&s.agents[i], s.main, mp, rng)
	}
}
