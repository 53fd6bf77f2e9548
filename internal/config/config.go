// Package config provides unified configuration loading for brainsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nvandessel/brainsim/internal/constants"
	"gopkg.in/yaml.v3"
)

// BrainsimConfig contains all brainsim configuration settings.
type BrainsimConfig struct {
	// Network controls population sizes and wiring.
	Network NetworkConfig `json:"network" yaml:"network"`

	// Encoders configures the sensory encoders registered at startup.
	Encoders EncodersConfig `json:"encoders" yaml:"encoders"`

	// Runtime controls tick pacing and pre-training.
	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`

	// Recording configures the SQLite run recorder.
	Recording RecordingConfig `json:"recording" yaml:"recording"`

	// Logging contains settings for operational and event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// NetworkConfig holds everything the simulation core needs to build and run a network.
type NetworkConfig struct {
	// Seed seeds the network's random source. Zero picks a time-based seed.
	Seed int64 `json:"seed" yaml:"seed"`

	ExcitatoryInterneurons int `json:"excitatory_interneurons" yaml:"excitatory_interneurons"`
	InhibitoryInterneurons int `json:"inhibitory_interneurons" yaml:"inhibitory_interneurons"`
	ReservoirSize          int `json:"reservoir_size" yaml:"reservoir_size"`

	// BaselineFraction is the fraction of all neurons each neuron connects to
	// during baseline wiring. Range: 0.0 to 1.0
	BaselineFraction float64 `json:"baseline_fraction" yaml:"baseline_fraction"`

	PredictorFanIn int `json:"predictor_fan_in" yaml:"predictor_fan_in"`
	SpeakerFanOut  int `json:"speaker_fan_out" yaml:"speaker_fan_out"`

	// SensoryReservoirKick queues extra input into the reservoir slot of a
	// sensory neuron each time it fires.
	SensoryReservoirKick bool `json:"sensory_reservoir_kick" yaml:"sensory_reservoir_kick"`

	Neuron   NeuronConfig   `json:"neuron" yaml:"neuron"`
	Learning LearningConfig `json:"learning" yaml:"learning"`
	Reward   RewardConfig   `json:"reward" yaml:"reward"`
}

// NeuronConfig holds the LIF membrane parameters. Times are in ticks.
type NeuronConfig struct {
	DT               int64   `json:"dt" yaml:"dt"`
	TauM             float64 `json:"tau_m" yaml:"tau_m"`
	Rest             float64 `json:"rest" yaml:"rest"`
	Threshold        float64 `json:"threshold" yaml:"threshold"`
	Reset            float64 `json:"reset" yaml:"reset"`
	RefractoryPeriod float64 `json:"refractory_period" yaml:"refractory_period"`

	// SpontaneousRate is the per-tick probability of injecting SpontaneousInput
	// into a random reservoir neuron.
	SpontaneousRate  float64 `json:"spontaneous_rate" yaml:"spontaneous_rate"`
	SpontaneousInput float64 `json:"spontaneous_input" yaml:"spontaneous_input"`
}

// LearningConfig holds the plasticity parameters.
type LearningConfig struct {
	LearningRate         float64 `json:"learning_rate" yaml:"learning_rate"`
	STDPWindow           int64   `json:"stdp_window" yaml:"stdp_window"`
	EligibilityDecay     float64 `json:"eligibility_decay" yaml:"eligibility_decay"`
	ConsolidateThreshold float64 `json:"consolidate_threshold" yaml:"consolidate_threshold"`
	ConsolidateTime      int64   `json:"consolidate_time" yaml:"consolidate_time"`

	// StaleEligibility decides what happens to traces of out-of-context synapses:
	// "preserve" (default) or "decay".
	StaleEligibility constants.EligibilityPolicy `json:"stale_eligibility" yaml:"stale_eligibility"`

	ContextBits   int   `json:"context_bits" yaml:"context_bits"`
	ContextPeriod int64 `json:"context_period" yaml:"context_period"`
}

// RewardConfig holds the dopamine pathway and critic parameters.
type RewardConfig struct {
	DopamineDecay float64 `json:"dopamine_decay" yaml:"dopamine_decay"`
	BaselineRate  float64 `json:"baseline_rate" yaml:"baseline_rate"`

	PerfectReward float64 `json:"perfect_reward" yaml:"perfect_reward"`
	GoodReward    float64 `json:"good_reward" yaml:"good_reward"`
	BadReward     float64 `json:"bad_reward" yaml:"bad_reward"`
	GoodError     int64   `json:"good_error" yaml:"good_error"`
	BadError      int64   `json:"bad_error" yaml:"bad_error"`
}

// EncodersConfig configures which sensory modalities are registered.
type EncodersConfig struct {
	Text   TextEncoderConfig   `json:"text" yaml:"text"`
	Visual VisualEncoderConfig `json:"visual" yaml:"visual"`
	Audio  AudioEncoderConfig  `json:"audio" yaml:"audio"`
}

// TextEncoderConfig configures the population-coded text encoder.
type TextEncoderConfig struct {
	Enabled        bool    `json:"enabled" yaml:"enabled"`
	Alphabet       string  `json:"alphabet" yaml:"alphabet"`
	PointerDim     int     `json:"pointer_dim" yaml:"pointer_dim"`
	Sparsity       float64 `json:"sparsity" yaml:"sparsity"`
	PopulationSize int     `json:"population_size" yaml:"population_size"`
}

// VisualEncoderConfig configures the grayscale grid encoder.
type VisualEncoderConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Width   int  `json:"width" yaml:"width"`
	Height  int  `json:"height" yaml:"height"`
}

// AudioEncoderConfig configures the frequency band encoder.
type AudioEncoderConfig struct {
	Enabled  bool    `json:"enabled" yaml:"enabled"`
	Bands    int     `json:"bands" yaml:"bands"`
	Sparsity float64 `json:"sparsity" yaml:"sparsity"`
}

// RuntimeConfig controls how the interactive loop paces ticks.
type RuntimeConfig struct {
	// TickInterval is the wall-clock pause between ticks. Zero runs as fast as possible.
	TickInterval time.Duration `json:"tick_interval" yaml:"tick_interval"`

	// SpeakerPoll is how often the speaker adapter polls output neurons.
	SpeakerPoll time.Duration `json:"speaker_poll" yaml:"speaker_poll"`

	// StatusEvery is the number of ticks between status log lines. Zero disables.
	StatusEvery int64 `json:"status_every" yaml:"status_every"`

	// PreTrain lists patterns replayed before interactive use.
	PreTrain []PreTrainConfig `json:"pre_train,omitempty" yaml:"pre_train,omitempty"`
}

// PreTrainConfig describes one pre-training pattern.
type PreTrainConfig struct {
	Pattern        string  `json:"pattern" yaml:"pattern"`
	Repetitions    int     `json:"repetitions" yaml:"repetitions"`
	TicksPerSymbol int     `json:"ticks_per_symbol" yaml:"ticks_per_symbol"`
	Reward         float64 `json:"reward" yaml:"reward"`
}

// RecordingConfig configures the run recorder.
type RecordingConfig struct {
	// Enabled turns on SQLite recording of status snapshots, rewards and speech.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding brainsim.db and events.jsonl.
	// Defaults to ~/.brainsim.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// SnapshotEvery is the number of ticks between recorded snapshots.
	SnapshotEvery int64 `json:"snapshot_every" yaml:"snapshot_every"`
}

// LoggingConfig configures brainsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables event logging to events.jsonl.
	// "trace" additionally logs every spike.
	Level string `json:"level" yaml:"level"`
}

// Default returns a BrainsimConfig with sensible defaults.
func Default() *BrainsimConfig {
	return &BrainsimConfig{
		Network: DefaultNetwork(),
		Encoders: EncodersConfig{
			Text: TextEncoderConfig{
				Enabled:        true,
				Alphabet:       constants.DefaultAlphabet,
				PointerDim:     constants.DefaultPointerDim,
				Sparsity:       constants.DefaultPointerSparsity,
				PopulationSize: constants.DefaultPopulationSize,
			},
			Visual: VisualEncoderConfig{
				Enabled: false,
				Width:   28,
				Height:  28,
			},
			Audio: AudioEncoderConfig{
				Enabled:  false,
				Bands:    64,
				Sparsity: 0.1,
			},
		},
		Runtime: RuntimeConfig{
			TickInterval: 0,
			SpeakerPoll:  50 * time.Millisecond,
			StatusEvery:  constants.DefaultStatusEvery,
			PreTrain: []PreTrainConfig{
				{Pattern: "hello", Repetitions: 5, TicksPerSymbol: constants.DefaultTicksPerSymbol, Reward: constants.DefaultTrainReward},
				{Pattern: "world", Repetitions: 3, TicksPerSymbol: constants.DefaultTicksPerSymbol, Reward: constants.DefaultTrainReward},
			},
		},
		Recording: RecordingConfig{
			Enabled:       false,
			SnapshotEvery: 1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultNetwork returns the default network parameters.
func DefaultNetwork() NetworkConfig {
	return NetworkConfig{
		ExcitatoryInterneurons: constants.DefaultExcitatoryInterneurons,
		InhibitoryInterneurons: constants.DefaultInhibitoryInterneurons,
		ReservoirSize:          constants.DefaultReservoirSize,
		BaselineFraction:       constants.DefaultBaselineFraction,
		PredictorFanIn:         constants.DefaultPredictorFanIn,
		SpeakerFanOut:          constants.DefaultSpeakerFanOut,
		SensoryReservoirKick:   true,
		Neuron: NeuronConfig{
			DT:               constants.DefaultDT,
			TauM:             constants.DefaultTauM,
			Rest:             constants.DefaultRestPotential,
			Threshold:        constants.DefaultThresholdPotential,
			Reset:            constants.DefaultResetPotential,
			RefractoryPeriod: constants.DefaultRefractoryPeriod,
			SpontaneousRate:  constants.DefaultSpontaneousRate,
			SpontaneousInput: constants.DefaultSpontaneousInput,
		},
		Learning: LearningConfig{
			LearningRate:         constants.DefaultLearningRate,
			STDPWindow:           constants.DefaultSTDPWindow,
			EligibilityDecay:     constants.DefaultEligibilityDecay,
			ConsolidateThreshold: constants.DefaultConsolidateThreshold,
			ConsolidateTime:      constants.DefaultConsolidateTime,
			StaleEligibility:     constants.EligibilityPreserve,
			ContextBits:          constants.DefaultContextBits,
			ContextPeriod:        constants.DefaultContextPeriod,
		},
		Reward: RewardConfig{
			DopamineDecay: constants.DefaultDopamineDecay,
			BaselineRate:  constants.DefaultBaselineRate,
			PerfectReward: constants.PerfectPredictionReward,
			GoodReward:    constants.GoodPredictionReward,
			BadReward:     constants.BadPredictionReward,
			GoodError:     constants.GoodPredictionError,
			BadError:      constants.BadPredictionError,
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.brainsim/config.yaml -> environment variables
func Load() (*BrainsimConfig, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".brainsim", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadPath loads path, or the default locations when path is empty. Environment
// variables override the file either way.
// Order: defaults -> path -> environment variables
func LoadPath(path string) (*BrainsimConfig, error) {
	if path == "" {
		return Load()
	}
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(config)
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
// Environment variables are not applied; see LoadPath.
// Fields missing from the file keep their default values.
func LoadFromFile(path string) (*BrainsimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Recording.Dir = expandEnvVars(config.Recording.Dir)

	return config, nil
}

// Marshal renders the configuration as YAML.
func (c *BrainsimConfig) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// DataDir returns the directory used for recordings and event logs.
func (c *BrainsimConfig) DataDir() (string, error) {
	if c.Recording.Dir != "" {
		return c.Recording.Dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(homeDir, ".brainsim"), nil
}

// Validate checks that the configuration is valid.
func (c *BrainsimConfig) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return err
	}

	text := c.Encoders.Text
	if text.Enabled {
		if text.Alphabet == "" {
			return fmt.Errorf("text alphabet must not be empty")
		}
		if text.PopulationSize <= 0 {
			return fmt.Errorf("population_size must be positive, got %d", text.PopulationSize)
		}
		if text.PointerDim < 4*text.PopulationSize {
			return fmt.Errorf("pointer_dim must be at least 4*population_size (%d), got %d", 4*text.PopulationSize, text.PointerDim)
		}
		if text.Sparsity <= 0 || text.Sparsity > 1 {
			return fmt.Errorf("text sparsity must be in (0, 1], got %f", text.Sparsity)
		}
	}
	if c.Encoders.Visual.Enabled && (c.Encoders.Visual.Width < 4 || c.Encoders.Visual.Height < 4) {
		return fmt.Errorf("visual encoder needs at least a 4x4 image, got %dx%d", c.Encoders.Visual.Width, c.Encoders.Visual.Height)
	}
	if c.Encoders.Audio.Enabled && c.Encoders.Audio.Bands <= 0 {
		return fmt.Errorf("audio bands must be positive, got %d", c.Encoders.Audio.Bands)
	}

	if c.Runtime.TickInterval < 0 {
		return fmt.Errorf("tick_interval must be non-negative, got %v", c.Runtime.TickInterval)
	}
	for _, p := range c.Runtime.PreTrain {
		if p.Repetitions < 0 || p.TicksPerSymbol < 0 {
			return fmt.Errorf("pre_train %q: repetitions and ticks_per_symbol must be non-negative", p.Pattern)
		}
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// Validate checks the network parameters.
func (n NetworkConfig) Validate() error {
	if n.ExcitatoryInterneurons < 0 || n.InhibitoryInterneurons < 0 {
		return fmt.Errorf("interneuron counts must be non-negative")
	}
	if n.ReservoirSize <= 0 {
		return fmt.Errorf("reservoir_size must be positive, got %d", n.ReservoirSize)
	}
	if n.BaselineFraction < 0 || n.BaselineFraction > 1 {
		return fmt.Errorf("baseline_fraction must be between 0 and 1, got %f", n.BaselineFraction)
	}
	if n.Neuron.DT <= 0 {
		return fmt.Errorf("dt must be positive, got %d", n.Neuron.DT)
	}
	if n.Neuron.TauM <= 0 {
		return fmt.Errorf("tau_m must be positive, got %f", n.Neuron.TauM)
	}
	if n.Neuron.Threshold <= n.Neuron.Rest {
		return fmt.Errorf("threshold (%f) must be above rest (%f)", n.Neuron.Threshold, n.Neuron.Rest)
	}
	if n.Neuron.RefractoryPeriod < 0 {
		return fmt.Errorf("refractory_period must be non-negative, got %f", n.Neuron.RefractoryPeriod)
	}
	if n.Neuron.SpontaneousRate < 0 || n.Neuron.SpontaneousRate > 1 {
		return fmt.Errorf("spontaneous_rate must be between 0 and 1, got %f", n.Neuron.SpontaneousRate)
	}
	if n.Learning.ContextBits < 1 || n.Learning.ContextBits > constants.MaxContextBits {
		return fmt.Errorf("context_bits must be between 1 and %d, got %d", constants.MaxContextBits, n.Learning.ContextBits)
	}
	if n.Learning.ContextPeriod <= 0 {
		return fmt.Errorf("context_period must be positive, got %d", n.Learning.ContextPeriod)
	}
	if n.Learning.EligibilityDecay < 0 || n.Learning.EligibilityDecay > 1 {
		return fmt.Errorf("eligibility_decay must be between 0 and 1, got %f", n.Learning.EligibilityDecay)
	}
	if !n.Learning.StaleEligibility.Valid() {
		return fmt.Errorf("invalid stale_eligibility: %s (valid: preserve, decay)", n.Learning.StaleEligibility)
	}
	if n.Reward.BaselineRate < 0 || n.Reward.BaselineRate > 1 {
		return fmt.Errorf("baseline_rate must be between 0 and 1, got %f", n.Reward.BaselineRate)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *BrainsimConfig) {
	if v := os.Getenv("BRAINSIM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Network.Seed = n
		}
	}

	if v := os.Getenv("BRAINSIM_RESERVOIR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Network.ReservoirSize = n
		}
	}

	if v := os.Getenv("BRAINSIM_CONTEXT_BITS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Network.Learning.ContextBits = n
		}
	}

	if v := os.Getenv("BRAINSIM_STALE_ELIGIBILITY"); v != "" {
		config.Network.Learning.StaleEligibility = constants.EligibilityPolicy(strings.ToLower(v))
	}

	if v := os.Getenv("BRAINSIM_RECORD"); v != "" {
		config.Recording.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("BRAINSIM_DATA_DIR"); v != "" {
		config.Recording.Dir = v
	}

	if v := os.Getenv("BRAINSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
