// Command idaia turns natural-language prompts into CAD construction
// commands, interpreted by a configured LLM backend with a rule-based
// fallback.
//
// Usage:
//
//	idaia run                     interactive prompt panel
//	idaia parse "a box 10x20x5"   one-shot, prints the command set as JSON
//	idaia ping                    tests the configured backend connection
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pedrocandeias/idaia"
	"github.com/pedrocandeias/idaia/agent"
	"github.com/pedrocandeias/idaia/anthropic"
	"github.com/pedrocandeias/idaia/config"
	"github.com/pedrocandeias/idaia/dispatch"
	"github.com/pedrocandeias/idaia/gemini"
	sessionjson "github.com/pedrocandeias/idaia/json"
	"github.com/pedrocandeias/idaia/openaichat"
	"github.com/pedrocandeias/idaia/parametric"
	"github.com/pedrocandeias/idaia/ruleparser"
	"github.com/pedrocandeias/idaia/tui"
)

const defaultConfigPath = ".idaia/config.json"

func main() {
	var (
		configPath string
		logPath    string
	)

	rootCmd := &cobra.Command{
		Use:           "idaia",
		Short:         "natural-language CAD command pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to config.json")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "log output path (default: discard; parse/ping default: stderr)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "open the interactive prompt panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath, logPath, "")
			if err != nil {
				return err
			}
			defer a.close()
			return a.runPanel(cmd.Context())
		},
	}

	var ruleOnly bool
	parseCmd := &cobra.Command{
		Use:   "parse <prompt>",
		Short: "resolve one prompt and print the command set as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath, logPath, "stderr")
			if err != nil {
				return err
			}
			defer a.close()
			if ruleOnly {
				a.disp = dispatch.New(ruleparser.New(), a.sess, dispatch.WithLogger(a.log))
			}
			return a.parseOnce(cmd.Context(), strings.Join(args, " "))
		},
	}
	parseCmd.Flags().BoolVar(&ruleOnly, "rule-only", false, "skip the AI backend and use the rule-based parser")

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "test the configured backend connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath, logPath, "stderr")
			if err != nil {
				return err
			}
			defer a.close()
			return a.ping(cmd.Context())
		},
	}

	rootCmd.AddCommand(runCmd, parseCmd, pingCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "idaia: %v\n", err)
		os.Exit(1)
	}
}

// app wires the pipeline: config, logger, session, providers,
// dispatcher, and the in-memory geometry layer.
type app struct {
	cfg     config.Config
	log     *zap.Logger
	sess    *idaia.Session
	agent   *agent.Agent // nil when AI is disabled
	disp    *dispatch.Dispatcher
	builder *sceneBuilder
	namer   *parametric.Namer // nil unless parametric mode
}

func newApp(configPath, logPath, defaultLogPath string) (*app, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}

	if logPath == "" {
		logPath = defaultLogPath
	}
	log, err := newLogger(cfg.LogLevel, logPath)
	if err != nil {
		return nil, err
	}

	sess, err := loadOrCreateSession(cfg.SessionPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		sess:    sess,
		builder: newSceneBuilder(log),
	}
	if cfg.ParametricMode {
		a.namer = parametric.NewNamer(newMemParamStore())
	}

	opts := []dispatch.Option{dispatch.WithLogger(log)}
	provider, err := newProvider(context.Background(), cfg)
	if err != nil {
		log.Warn("AI backend unavailable, running rule-based only", zap.Error(err))
	} else {
		retrier := idaia.NewRetrier(provider, cfg.MaxRetries, idaia.WithLogger(log))
		a.agent = agent.New(retrier,
			agent.WithModel(cfg.Model),
			agent.WithTemperature(cfg.Temperature),
			agent.WithLogger(log))
		opts = append(opts, dispatch.WithAgent(a.agent))
	}

	a.disp = dispatch.New(ruleparser.New(), sess, opts...)
	return a, nil
}

func (a *app) close() {
	if a.cfg.SessionPath != "" && len(a.sess.Turns)+len(a.sess.Objects) > 0 {
		if err := sessionjson.Save(a.cfg.SessionPath, a.sess); err != nil {
			fmt.Fprintf(os.Stderr, "idaia: save session: %v\n", err)
		}
	}
	_ = a.log.Sync()
}

func (a *app) runPanel(ctx context.Context) error {
	m := tui.New(a.disp, a.apply, a.sess, idaia.DefaultTheme())
	if err := tui.Run(ctx, m); err != nil {
		return fmt.Errorf("panel: %w", err)
	}
	return nil
}

// invocationTimeout bounds a whole one-shot command. The HTTP clients
// already cap each attempt at cfg.Timeout(), so the outer deadline
// leaves room for every retry attempt plus the backoff between them;
// a tighter bound would expire the context on the first timed-out
// attempt and retries could never run.
func (a *app) invocationTimeout() time.Duration {
	attempts := time.Duration(a.cfg.MaxRetries + 1)
	backoff := 10 * time.Second * time.Duration(a.cfg.MaxRetries)
	return a.cfg.Timeout()*attempts + backoff
}

func (a *app) parseOnce(ctx context.Context, prompt string) error {
	ctx, cancel := context.WithTimeout(ctx, a.invocationTimeout())
	defer cancel()

	set, err := a.disp.Dispatch(ctx, prompt)
	if err != nil {
		return err
	}
	if _, err := a.apply(set); err != nil {
		return err
	}

	out, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func (a *app) ping(ctx context.Context) error {
	if a.agent == nil {
		return fmt.Errorf("no AI backend configured")
	}
	ctx, cancel := context.WithTimeout(ctx, a.invocationTimeout())
	defer cancel()

	if err := a.agent.Ping(ctx); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	fmt.Printf("%s (%s): connection OK\n", a.cfg.Provider, a.cfg.Model)
	return nil
}

// apply materializes a resolved command set through the geometry layer
// and records the created objects in the session's scene snapshot.
func (a *app) apply(set idaia.CommandSet) ([]idaia.ObjectRef, error) {
	refs := make([]idaia.ObjectRef, 0, len(set.Shapes))
	for _, spec := range set.Shapes {
		ref, err := a.createShape(spec)
		if err != nil {
			return nil, err
		}
		a.sess.RecordObject(ref)
		refs = append(refs, ref)
	}
	return refs, nil
}

// createShape creates one object, assigning store-backed variables
// first when parametric mode is on. Variables are named after the final
// object name so the store and the scene stay aligned.
func (a *app) createShape(spec idaia.ShapeSpec) (idaia.ObjectRef, error) {
	if a.namer == nil {
		return a.builder.CreateShape(spec)
	}

	named := spec
	if named.Name == "" {
		named.Name = objectBase(spec)
	}
	assigned, err := a.namer.Assign(named.Name, idaia.CommandSet{
		Shapes: []idaia.ShapeSpec{named},
		Source: idaia.SourceRule,
	})
	if err != nil {
		return idaia.ObjectRef{}, err
	}
	named.Name = assigned[0].Base
	return a.builder.CreateParametricShape(named, assigned[0].Vars)
}

func newProvider(ctx context.Context, cfg config.Config) (idaia.Provider, error) {
	hc := &http.Client{Timeout: cfg.Timeout()}

	switch cfg.Kind() {
	case idaia.ProviderOllama:
		return openaichat.New("",
			openaichat.WithBaseURL(cfg.BaseURL),
			openaichat.WithHTTPClient(hc)), nil

	case idaia.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai requires api_key")
		}
		return openaichat.New(cfg.APIKey,
			openaichat.WithBaseURL(cfg.BaseURL),
			openaichat.WithHTTPClient(hc)), nil

	case idaia.ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic requires api_key")
		}
		opts := []anthropic.Option{anthropic.WithHTTPClient(hc)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.New(cfg.APIKey, opts...), nil

	case idaia.ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini requires api_key")
		}
		opts := []gemini.Option{gemini.WithHTTPClient(hc)}
		if cfg.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Model))
		}
		return gemini.New(ctx, cfg.APIKey, opts...)
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

func newLogger(level, path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}

func loadOrCreateSession(path string) (*idaia.Session, error) {
	if path == "" {
		return idaia.NewSession("document"), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return idaia.NewSession("document"), nil
	}
	sess, err := sessionjson.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}
