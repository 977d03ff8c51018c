package geostats

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the solver configuration. Angles are in degrees.
type Config struct {
	Variogram  VariogramConfig  `yaml:"variogram" mapstructure:"variogram"`
	Kriging    KrigingConfig    `yaml:"kriging" mapstructure:"kriging"`
	Simulation SimulationConfig `yaml:"simulation" mapstructure:"simulation"`
	Workers    int              `yaml:"workers" mapstructure:"workers"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

type VariogramConfig struct {
	Model    ModelType `yaml:"model" mapstructure:"model"`
	Sill     float64   `yaml:"sill" mapstructure:"sill"`
	Range    float64   `yaml:"range" mapstructure:"range"`
	Nugget   float64   `yaml:"nugget" mapstructure:"nugget"`
	Semiaxes []float64 `yaml:"semiaxes" mapstructure:"semiaxes"`
	Angles   []float64 `yaml:"angles" mapstructure:"angles"`
}

type KrigingConfig struct {
	Kind         KrigingKind  `yaml:"kind" mapstructure:"kind"`
	Mean         *float64     `yaml:"mean" mapstructure:"mean"`
	Neighborhood Neighborhood `yaml:"neighborhood" mapstructure:"neighborhood"`
	HullMask     bool         `yaml:"hull_mask" mapstructure:"hull_mask"`
}

type SimulationConfig struct {
	Seed   uint64   `yaml:"seed" mapstructure:"seed"`
	NReals int      `yaml:"nreals" mapstructure:"nreals"`
	Mean   *float64 `yaml:"mean" mapstructure:"mean"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LoadConfig reads defaults, then the YAML file at path if path is not
// empty, then GEOSTATS_* environment variables. List values in the
// environment are comma separated.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("GEOSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// keys without a default are unknown to AutomaticEnv
	for _, key := range []string{"variogram.semiaxes", "variogram.angles", "kriging.mean", "simulation.mean"} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", key)
		}
	}

	v.SetDefault("variogram.model", string(Gaussian))
	v.SetDefault("variogram.sill", 1.0)
	v.SetDefault("variogram.range", 1.0)
	v.SetDefault("variogram.nugget", 0.0)
	v.SetDefault("kriging.kind", string(Ordinary))
	v.SetDefault("kriging.neighborhood.kind", string(Unlimited))
	v.SetDefault("kriging.neighborhood.k", 0)
	v.SetDefault("kriging.neighborhood.radius", 0.0)
	v.SetDefault("kriging.hull_mask", false)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.nreals", 1)
	v.SetDefault("workers", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// BuildVariogram builds the configured model. Semiaxes select an ellipsoidal
// metric; otherwise distances are Euclidean.
func (c *Config) BuildVariogram() (Variogram, error) {
	opts := []VariogramOption{
		WithSill(c.Variogram.Sill),
		WithRange(c.Variogram.Range),
		WithNugget(c.Variogram.Nugget),
	}
	if len(c.Variogram.Semiaxes) > 0 {
		angles := make([]float64, len(c.Variogram.Angles))
		for i, a := range c.Variogram.Angles {
			angles[i] = degToRad(a)
		}
		m, err := NewEllipsoidal(c.Variogram.Semiaxes, angles)
		if err != nil {
			return nil, eris.Wrap(err, "config: variogram metric")
		}
		opts = append(opts, WithMetric(m))
	}
	v, err := NewVariogram(c.Variogram.Model, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "config: variogram")
	}
	return v, nil
}

func (c *Config) KrigingParams() (KrigingParams, error) {
	v, err := c.BuildVariogram()
	if err != nil {
		return KrigingParams{}, err
	}
	p := KrigingParams{
		Variogram:    v,
		Kind:         c.Kriging.Kind,
		Mean:         c.Kriging.Mean,
		Neighborhood: c.Kriging.Neighborhood,
	}
	if err := p.Neighborhood.validate(); err != nil {
		return KrigingParams{}, eris.Wrap(err, "config: kriging")
	}
	return p, nil
}

func (c *Config) SimParams() (SimParams, error) {
	v, err := c.BuildVariogram()
	if err != nil {
		return SimParams{}, err
	}
	return SimParams{Variogram: v, Mean: c.Simulation.Mean}, nil
}

// NewKriging returns a solver that applies the configured parameters to every
// variable in vars.
func (c *Config) NewKriging(vars ...string) (*Kriging, error) {
	p, err := c.KrigingParams()
	if err != nil {
		return nil, err
	}
	params := make(map[string]KrigingParams, len(vars))
	for _, v := range vars {
		params[v] = p
	}
	return &Kriging{Params: params, Workers: c.Workers, HullMask: c.Kriging.HullMask}, nil
}

func (c *Config) NewLUGaussSim(vars ...string) (*LUGaussSim, error) {
	p, err := c.SimParams()
	if err != nil {
		return nil, err
	}
	params := make(map[string]SimParams, len(vars))
	for _, v := range vars {
		params[v] = p
	}
	return &LUGaussSim{Params: params, Seed: c.Simulation.Seed, Workers: c.Workers}, nil
}

// NewSimulationProblem builds a problem for simulation.nreals realizations.
// A nil data set gives an unconditional problem.
func (c *Config) NewSimulationProblem(data *GeospatialData, domain Domain, vars ...string) (*SimulationProblem, error) {
	if data == nil {
		return NewUnconditionalSimulationProblem(domain, c.Simulation.NReals, vars...)
	}
	return NewSimulationProblem(data, domain, c.Simulation.NReals, vars...)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
