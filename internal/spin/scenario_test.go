package spin_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spinsim/internal/spin"
	"github.com/san-kum/spinsim/internal/topology"
)

type replay struct {
	ints   []int
	floats []float64
}

func (r *replay) IntN(n int) int {
	Expect(r.ints).NotTo(BeEmpty(), "unexpected IntN draw")
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *replay) Float64() float64 {
	Expect(r.floats).NotTo(BeEmpty(), "unexpected Float64 draw")
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

var still = func() time.Time { return time.Unix(0, 0) }

var _ = Describe("Simulator", func() {
	Describe("a downhill flip on two nodes", func() {
		It("is accepted without drawing a random number", func() {
			cfg := spin.DefaultConfig()
			cfg.NumNodes = 2
			cfg.NeighborsCount = 1
			cfg.Coupling = 1
			cfg.Field = 0

			r := &replay{ints: []int{0}}
			s, err := spin.New(cfg,
				spin.WithPositions([]topology.Vec3{{0, 0, 0}, {1, 0, 0}}),
				spin.WithSpins([]spin.Spin{spin.Up, spin.Down}),
				spin.WithRand(r),
				spin.WithClock(still),
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Graph().HasEdge(0, 1)).To(BeTrue())

			tr := s.Trial()
			Expect(tr.DeltaE).To(BeNumerically("<=", 0))
			Expect(tr.Accepted).To(BeTrue())
			Expect(s.Spins()).To(Equal([]spin.Spin{spin.Down, spin.Down}))
			Expect(r.floats).To(BeEmpty())
		})
	})

	Describe("four nodes on a ring at unit temperature", func() {
		var (
			s *spin.Simulator
			r *replay
		)

		BeforeEach(func() {
			cfg := spin.DefaultConfig()
			cfg.NumNodes = 4
			cfg.NeighborsCount = 2
			cfg.Coupling = 1
			cfg.Temperature = 1
			cfg.Field = 0
			cfg.TrialsPerTick = 3

			// Nodes 0, 2 pick 1, 3 as neighbours: the ring 0-1-2-3-0.
			square := []topology.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
			r = &replay{ints: []int{0, 2, 1}, floats: []float64{0.5, 0.01}}

			var err error
			s, err = spin.New(cfg,
				spin.WithPositions(square),
				spin.WithSpins([]spin.Spin{spin.Up, spin.Up, spin.Down, spin.Up}),
				spin.WithRand(r),
				spin.WithClock(still),
			)
			Expect(err).NotTo(HaveOccurred())
		})

		It("follows the hand-computed trace for the first three trials", func() {
			// Node 0: neighbours 1, 3 sum to 2, dE = 4, u = 0.5 > e^-4.
			t1 := s.Trial()
			Expect(t1.Node).To(Equal(0))
			Expect(t1.DeltaE).To(Equal(4.0))
			Expect(t1.Accepted).To(BeFalse())

			// Node 2: spin -1 against a sum of 2, dE = -4.
			t2 := s.Trial()
			Expect(t2.Node).To(Equal(2))
			Expect(t2.DeltaE).To(Equal(-4.0))
			Expect(t2.Accepted).To(BeTrue())

			// Node 1: neighbours 0, 2 now both +1, dE = 4, u = 0.01 < e^-4.
			t3 := s.Trial()
			Expect(t3.Node).To(Equal(1))
			Expect(t3.DeltaE).To(Equal(4.0))
			Expect(t3.Accepted).To(BeTrue())

			Expect(s.Spins()).To(Equal([]spin.Spin{spin.Up, spin.Down, spin.Up, spin.Up}))
			Expect(s.Magnetization()).To(Equal(0.5))
		})

		It("aggregates and emits the same trace as one tick", func() {
			var got []spin.Signal
			s.Subscribe(spin.ObserverFunc(func(sig spin.Signal) { got = append(got, sig) }))

			sig := s.Tick()
			Expect(got).To(HaveLen(1))
			Expect(got[0]).To(Equal(sig))
			Expect(sig.Tick).To(BeEquivalentTo(1))
			Expect(sig.Trials).To(Equal(3))
			Expect(sig.Accepted).To(Equal(2))
			Expect(sig.Magnetization).To(Equal(0.5))
			Expect(sig.Smoothed).To(BeNumerically("~", 0.005, 1e-12))
			Expect(sig.Energy).To(Equal(0.0))
			Expect(s.History()).To(Equal([]float64{0.5}))
		})
	})

	Describe("a ternary ring with a zero spin", func() {
		var (
			s *spin.Simulator
			r *replay
		)

		// Node 0 is the only trial site; its neighbours 1 and 3 sum to 2.
		// Proposal draws 0 then 1 map 0 to -1 then +1, and -1 to +1.
		BeforeEach(func() {
			cfg := spin.DefaultConfig()
			cfg.NumNodes = 4
			cfg.NeighborsCount = 2
			cfg.Coupling = 1
			cfg.Temperature = 1
			cfg.Field = 0
			cfg.Ternary = true
			cfg.TrialsPerTick = 3

			square := []topology.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
			r = &replay{
				ints:   []int{0, 0, 0, 0, 0, 1},
				floats: []float64{0.5, 0.1},
			}
			var err error
			s, err = spin.New(cfg,
				spin.WithPositions(square),
				spin.WithSpins([]spin.Spin{spin.Zero, spin.Up, spin.Up, spin.Up}),
				spin.WithRand(r),
				spin.WithClock(still),
			)
			Expect(err).NotTo(HaveOccurred())
		})

		It("scores each move against the local field", func() {
			// 0 -> -1: dE = 2, u = 0.5 > e^-2.
			t1 := s.Trial()
			Expect(t1.From).To(Equal(spin.Zero))
			Expect(t1.To).To(Equal(spin.Down))
			Expect(t1.DeltaE).To(Equal(2.0))
			Expect(t1.Accepted).To(BeFalse())

			// 0 -> -1 again: u = 0.1 < e^-2.
			t2 := s.Trial()
			Expect(t2.DeltaE).To(Equal(2.0))
			Expect(t2.Accepted).To(BeTrue())

			// -1 -> +1: dE = -4, taken without a draw.
			t3 := s.Trial()
			Expect(t3.From).To(Equal(spin.Down))
			Expect(t3.To).To(Equal(spin.Up))
			Expect(t3.DeltaE).To(Equal(-4.0))
			Expect(t3.Accepted).To(BeTrue())

			Expect(r.ints).To(BeEmpty())
			Expect(r.floats).To(BeEmpty())
		})

		It("runs the same trials as one tick", func() {
			sig := s.Tick()
			Expect(sig.Trials).To(Equal(3))
			Expect(sig.Accepted).To(Equal(2))
			Expect(s.Spins()).To(Equal([]spin.Spin{spin.Up, spin.Up, spin.Up, spin.Up}))
			Expect(sig.Magnetization).To(Equal(1.0))
			Expect(sig.Energy).To(Equal(-4.0))
			Expect(r.floats).To(BeEmpty())
		})
	})

	Describe("free spins", func() {
		newFree := func(seed int64) *spin.Simulator {
			cfg := spin.DefaultConfig()
			cfg.NumNodes = 20
			cfg.NeighborsCount = 3
			cfg.Coupling = 0
			cfg.Field = 0
			cfg.Seed = seed
			s, err := spin.New(cfg, spin.WithClock(still))
			Expect(err).NotTo(HaveOccurred())
			return s
		}

		It("accepts every trial", func() {
			s := newFree(1)
			for i := 0; i < 200; i++ {
				sig := s.Tick()
				Expect(sig.Accepted).To(Equal(sig.Trials))
			}
		})

		It("random-walks without bias", func() {
			sum := 0.0
			runs := 200
			for seed := 0; seed < runs; seed++ {
				s := newFree(int64(seed))
				var sig spin.Signal
				for i := 0; i < 20; i++ {
					sig = s.Tick()
				}
				sum += sig.Magnetization
			}
			Expect(math.Abs(sum / float64(runs))).To(BeNumerically("<", 0.1))
		})
	})

	Describe("the smoothed signal", func() {
		It("stays inside [-1, 1] under drifting parameters", func() {
			cfg := spin.DefaultConfig()
			cfg.NumNodes = 60
			cfg.Seed = 99
			cfg.Alpha = 0.2
			clock := time.Unix(0, 0)
			s, err := spin.New(cfg, spin.WithClock(func() time.Time {
				clock = clock.Add(time.Second)
				return clock
			}))
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 500; i++ {
				sig := s.Tick()
				Expect(sig.Magnetization).To(BeNumerically(">=", -1))
				Expect(sig.Magnetization).To(BeNumerically("<=", 1))
				Expect(sig.Smoothed).To(BeNumerically(">=", -1))
				Expect(sig.Smoothed).To(BeNumerically("<=", 1))
				Expect(sig.Disorder()).To(BeNumerically(">=", 0))
			}
		})
	})

	Describe("construction", func() {
		It("fails fast on an empty system", func() {
			cfg := spin.DefaultConfig()
			cfg.NumNodes = 0
			_, err := spin.New(cfg)
			Expect(err).To(MatchError(spin.ErrInvalidConfig))
		})

		It("builds the same graph with either neighbour search", func() {
			cfg := spin.DefaultConfig()
			cfg.NumNodes = 80
			cfg.Seed = 5
			brute, err := spin.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			cfg.Search = spin.KDTree
			indexed, err := spin.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(indexed.Graph().Edges()).To(Equal(brute.Graph().Edges()))
		})
	})
})
