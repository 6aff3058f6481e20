package game

// reportWindowTicks is the default sliding window for recent-behaviour
// reports (~10s at 60TPS).
const reportWindowTicks = 600

// TierCounts tallies resolved results per accuracy tier over a run.
type TierCounts struct {
	Perfect  int
	Okay     int
	Bad      int
	Terrible int
	Missed   int
}

// Total returns all resolved results including silent expiries.
func (c TierCounts) Total() int {
	return c.Perfect + c.Okay + c.Bad + c.Terrible + c.Missed
}

// Pressed returns the results that came from an actual key press.
func (c TierCounts) Pressed() int {
	return c.Perfect + c.Okay + c.Bad
}

func (c *TierCounts) count(t FartResultType) {
	switch t {
	case ResultPerfect:
		c.Perfect++
	case ResultOkay:
		c.Okay++
	case ResultBad:
		c.Bad++
	case ResultTerrible:
		c.Terrible++
	case ResultMissed:
		c.Missed++
	}
}

// MeterSample captures meters and combo at one tick.
type MeterSample struct {
	Tick          int
	Pressure      float64
	Shame         float64
	Combo         int
	ActiveLetters int
}

// Reporter collects periodic samples from the running game and can produce
// summaries over a sliding window. It also tallies every resolved result.
type Reporter struct {
	history     []MeterSample
	windowTicks int
	counts      TierCounts
	maxCombo    int
}

// NewReporter creates a reporter with the given window size.
func NewReporter(windowTicks int) *Reporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &Reporter{windowTicks: windowTicks}
}

// Collect gathers a sample from the current state.
// Call this periodically (e.g. every 30 ticks / 0.5s).
func (r *Reporter) Collect(tick int, st State) {
	active := 0
	for i := range st.Opportunities {
		o := &st.Opportunities[i]
		if o.Active && !o.Handled {
			active++
		}
	}
	r.history = append(r.history, MeterSample{
		Tick:          tick,
		Pressure:      st.Pressure,
		Shame:         st.Shame,
		Combo:         st.Combo,
		ActiveLetters: active,
	})
	if st.Combo > r.maxCombo {
		r.maxCombo = st.Combo
	}
}

// CountResult tallies one resolved result.
func (r *Reporter) CountResult(t FartResultType) {
	r.counts.count(t)
}

// Counts returns the tier tallies so far.
func (r *Reporter) Counts() TierCounts {
	return r.counts
}

// MaxCombo returns the highest combo observed across collected samples.
func (r *Reporter) MaxCombo() int {
	return r.maxCombo
}

// WindowReport summarizes the most recent window of samples.
type WindowReport struct {
	SampleCount int
	FromTick    int
	ToTick      int

	AvgPressure float64
	MaxPressure float64
	AvgShame    float64
	MaxShame    float64
	AvgCombo    float64
	MaxCombo    int

	Counts TierCounts
}

// WindowSummary aggregates the samples inside the sliding window. Returns nil
// when nothing has been collected yet.
func (r *Reporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	latest := r.history[len(r.history)-1].Tick
	from := latest - r.windowTicks
	rep := &WindowReport{FromTick: latest, ToTick: latest, Counts: r.counts, MaxCombo: r.maxCombo}

	var sumP, sumS, sumC float64
	for _, s := range r.history {
		if s.Tick < from {
			continue
		}
		if s.Tick < rep.FromTick {
			rep.FromTick = s.Tick
		}
		rep.SampleCount++
		sumP += s.Pressure
		sumS += s.Shame
		sumC += float64(s.Combo)
		if s.Pressure > rep.MaxPressure {
			rep.MaxPressure = s.Pressure
		}
		if s.Shame > rep.MaxShame {
			rep.MaxShame = s.Shame
		}
	}
	if rep.SampleCount > 0 {
		n := float64(rep.SampleCount)
		rep.AvgPressure = sumP / n
		rep.AvgShame = sumS / n
		rep.AvgCombo = sumC / n
	}
	return rep
}
