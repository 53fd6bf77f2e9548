// Package constants provides named constants used throughout the brainsim codebase.
// This centralizes the simulation's magic numbers for better maintainability and documentation.
package constants

// Population sizes
const (
	// DefaultExcitatoryInterneurons is the number of excitatory interneurons allocated at startup.
	DefaultExcitatoryInterneurons = 700

	// DefaultInhibitoryInterneurons is the number of inhibitory interneurons allocated at startup.
	DefaultInhibitoryInterneurons = 100

	// DefaultReservoirSize is the number of reservoir (temporal memory) neurons.
	DefaultReservoirSize = 50

	// DefaultBaselineFraction is the fraction of all neurons each neuron connects to
	// when the sparse recurrent substrate is wired.
	DefaultBaselineFraction = 0.02
)

// Semantic pointer and population code parameters for the text encoder.
const (
	// DefaultPointerDim is the bit width of a semantic pointer.
	DefaultPointerDim = 128

	// DefaultPointerSparsity is the fraction of pointer bits set per symbol.
	DefaultPointerSparsity = 0.25

	// DefaultPopulationSize is the population code width per symbol.
	DefaultPopulationSize = 32

	// DefaultAlphabet is the set of symbols the text modality understands.
	DefaultAlphabet = "abcdefghijklmnopqrstuvwxyz "
)

// Membrane dynamics. Times are in ticks (1 tick = 1 simulated ms).
const (
	// DefaultDT is the simulation time step.
	DefaultDT = 1

	// DefaultTauM is the membrane time constant.
	DefaultTauM = 20.0

	// DefaultRestPotential is the resting membrane potential (mV).
	DefaultRestPotential = -70.0

	// DefaultThresholdPotential is the firing threshold (mV).
	DefaultThresholdPotential = -50.0

	// DefaultResetPotential is the potential a neuron is reset to after firing (mV).
	DefaultResetPotential = -80.0

	// DefaultRefractoryPeriod is how long a neuron ignores input after firing.
	DefaultRefractoryPeriod = 5
)

// Plasticity parameters
const (
	// DefaultSTDPWindow is the pre/post spike interval within which timing-based
	// weight changes apply.
	DefaultSTDPWindow = 20

	// DefaultLearningRate is the base rate for both Hebbian and reward-modulated updates.
	DefaultLearningRate = 0.01

	// DefaultEligibilityDecay is the per-tick multiplicative decay of eligibility traces.
	DefaultEligibilityDecay = 0.98

	// DefaultConsolidateThreshold is the absolute weight above which the freeze timer runs.
	DefaultConsolidateThreshold = 0.5

	// DefaultConsolidateTime is how long a weight must stay above threshold before freezing.
	DefaultConsolidateTime = 10_000
)

// Dopamine and context
const (
	// DefaultDopamineDecay scales the mean-centered dopamine level every tick.
	DefaultDopamineDecay = 0.95

	// DefaultBaselineRate is the EMA coefficient of the dopamine baseline.
	DefaultBaselineRate = 0.001

	// DefaultContextBits is the width of synapse context masks.
	DefaultContextBits = 16

	// MaxContextBits is the widest context mask a network can be configured with.
	MaxContextBits = 32

	// DefaultContextPeriod is the number of ticks between context register shifts.
	DefaultContextPeriod = 2000
)

// Spontaneous activity keeps the reservoir from going silent.
const (
	// DefaultSpontaneousRate is the per-tick probability of a spontaneous reservoir input.
	DefaultSpontaneousRate = 0.01

	// DefaultSpontaneousInput is the sub-threshold input injected spontaneously.
	DefaultSpontaneousInput = 0.7

	// StimulusInput is the buffered input each activated sensory neuron receives.
	StimulusInput = 1.0
)

// Modality wiring weights and fan-in/out counts.
const (
	TextInputToReservoirWeight    = 0.9
	GenericInputToReservoirWeight = 0.7
	ReservoirToPredictorWeight    = 0.6
	PredictorToSpeakerWeight      = 0.8
	SpeakerToReservoirWeight      = 0.5

	// DefaultPredictorFanIn is the number of reservoir neurons feeding each predictor.
	DefaultPredictorFanIn = 12

	// DefaultSpeakerFanOut is the number of reservoir neurons each speaker feeds back into.
	DefaultSpeakerFanOut = 6
)

// Critic reward tiers. Errors are absolute spike timing differences in ticks.
const (
	PerfectPredictionReward = 0.5
	GoodPredictionReward    = 0.05
	BadPredictionReward     = -0.3

	// GoodPredictionError is the largest error still rewarded as a good prediction.
	GoodPredictionError = 5

	// BadPredictionError is the error above which a prediction is punished.
	BadPredictionError = 20
)

// Logging cadence, in ticks.
const (
	// DefaultStatusEvery is how often the engine logs a status snapshot.
	DefaultStatusEvery = 5000

	// SpikeLogEvery is how often the engine logs a spike summary at debug level.
	SpikeLogEvery = 100
)

// Pre-training defaults used by `brainsim run` and `brainsim train`.
const (
	DefaultTicksPerSymbol = 10
	DefaultTrainReward    = 0.5
)

// NeverFired is the last-spike sentinel for a neuron that has not fired yet.
const NeverFired int64 = -10_000

// NotAbove is the consolidation timer sentinel for a synapse below threshold.
const NotAbove int64 = -1
