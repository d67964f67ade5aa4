package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/fishstation/internal/console"
	"github.com/desertthunder/fishstation/internal/models"
	"github.com/desertthunder/fishstation/internal/playback"
	"github.com/desertthunder/fishstation/internal/repositories"
	"github.com/desertthunder/fishstation/internal/services"
	"github.com/desertthunder/fishstation/internal/session"
	"github.com/desertthunder/fishstation/internal/shared"
	"github.com/desertthunder/fishstation/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Collaborators left nil in [RunnerOpts] are built from the config when the console starts.
type Runner struct {
	config    *shared.Config
	logger    *log.Logger
	logToFile bool
	output    io.Writer
	input     io.Reader
	source    services.MusicSource
	store     models.Store
	prompter  console.Prompter
	playOpts  []playback.Option

	state   *session.State
	player  *playback.Controller
	router  *console.Router
	running bool
	closers []io.Closer

	mu            sync.Mutex // guards the cancel funcs below
	cancelSession context.CancelFunc
	cancelPlay    context.CancelFunc
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Logger    *log.Logger
	LogToFile bool // Replace Logger with a file logger from the logging config when the console starts
	Output    io.Writer
	Input     io.Reader
	Source    services.MusicSource
	Store     models.Store
	Prompter  console.Prompter
	Playback  []playback.Option
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	output := &syncWriter{w: opts.Output}
	if opts.Prompter == nil {
		opts.Prompter = console.NewLinePrompter(opts.Input, output)
	}

	return &Runner{
		config:    opts.Config,
		logger:    opts.Logger,
		logToFile: opts.LogToFile,
		output:    output,
		input:     opts.Input,
		source:    opts.Source,
		store:     opts.Store,
		prompter:  opts.Prompter,
		playOpts:  opts.Playback,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){setupCommand} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and everything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Console is the root action: it wires the configured station and store, then runs the menu loop.
func (r *Runner) Console(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd.String("config")); err != nil {
		return err
	}
	defer r.closeAll()

	if r.logToFile {
		fileLogger, closer, err := shared.NewFileLogger(r.config.Logging.Path)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
		r.closers = append(r.closers, closer)
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Logging.Level))

	if r.store == nil {
		store, err := repositories.Open(r.config.Storage)
		if err != nil {
			return fmt.Errorf("failed to open playlist store: %w", err)
		}
		r.store = store
	}

	if r.source == nil {
		station, err := r.config.ActiveStation()
		if err != nil {
			return err
		}
		source, err := services.NewStationFromConfig(services.StationOpts{
			Name:     r.config.Station.Name,
			Station:  station,
			Playback: r.config.Playback,
			Search:   r.config.Search,
			Logger:   r.logger,
		})
		if err != nil {
			return err
		}
		r.source = source
	}

	r.logger.Info("starting console", "station", r.source.Name(), "storage", r.config.Storage.Backend)
	return r.Run(ctx)
}

// Run loads the session and runs the menu loop until exit, end of input or an interrupt.
// The store is closed when the loop ends.
//
// An interrupt during foreground play stops that track; anywhere else it ends the session,
// which stops playback the same way exit does.
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.prompter = console.WithContext(ctx, r.prompter)

	state, err := session.New(r.store, r.prompter, r.logger)
	if err != nil {
		return fmt.Errorf("failed to load playlists: %w", err)
	}
	defer func() {
		if err := state.Close(); err != nil {
			r.logger.Error("failed to close playlist store", "err", err)
		}
	}()

	r.state = state
	r.player = playback.New(r.source, r.logger, r.playOpts...)
	r.router = console.NewRouter(r.output, r.catalogue()...)
	r.running = true
	r.setCancel(&r.cancelSession, cancel)
	defer r.setCancel(&r.cancelSession, nil)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.printEvents(done)
	}()
	go func() {
		defer wg.Done()
		r.watchInterrupts(interrupts, done)
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	r.writePlainln("welcome to %s, %d playlists loaded", r.source.Name(), len(state.Playlists()))
	stop := func() { r.stopPlayback(context.WithoutCancel(ctx)) }
	if err := r.router.Run(ctx, r.prompter, func() bool { return r.running }, stop); err != nil {
		return err
	}
	if ctx.Err() != nil {
		r.writePlain("\n%s\n", ui.Warn("interrupted, playback stopped"))
	}
	return nil
}

func (r *Runner) watchInterrupts(interrupts <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case <-interrupts:
			r.interrupt()
		case <-done:
			return
		}
	}
}

// interrupt cancels foreground play when a track is playing and the session otherwise.
func (r *Runner) interrupt() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancelPlay != nil {
		r.logger.Info("interrupt: stopping foreground play")
		r.cancelPlay()
		return
	}
	if r.cancelSession != nil {
		r.logger.Info("interrupt: ending session")
		r.cancelSession()
	}
}

func (r *Runner) setCancel(slot *context.CancelFunc, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*slot = cancel
}

// printEvents writes playback events until done is closed, then flushes what is buffered.
func (r *Runner) printEvents(done <-chan struct{}) {
	events := r.player.Events()
	for {
		select {
		case e := <-events:
			r.printEvent(e)
		case <-done:
			for {
				select {
				case e := <-events:
					r.printEvent(e)
				default:
					return
				}
			}
		}
	}
}

func (r *Runner) printEvent(e playback.Event) {
	switch e.Kind {
	case playback.TrackStarted, playback.TraversalDone:
		r.writePlain("%s\n", ui.Ok(e.Message))
	case playback.TrackFailed:
		r.writePlain("%s\n", ui.Err(e.Message))
	default:
		r.writePlain("%s\n", ui.Warn(e.Message))
	}
}

func (r *Runner) stopPlayback(ctx context.Context) {
	if err := r.player.Stop(ctx); err != nil {
		r.report(err)
	}
}

func (r *Runner) loadConfig(path string) error {
	if r.config != nil {
		return nil
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := shared.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
		}
		config = loaded
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	config.ApplyEnv()
	r.config = config
	return nil
}

func (r *Runner) closeAll() {
	for _, c := range r.closers {
		_ = c.Close()
	}
	r.closers = nil
}

// report writes err as one user-visible line. Storage failures add a warning that the change is not saved.
func (r *Runner) report(err error) {
	if err == nil {
		return
	}
	r.logger.Warn("command failed", "kind", shared.Kind(err), "err", err)
	r.writePlain("%s\n", ui.Error(err))
	if errors.Is(err, shared.ErrStorage) {
		r.writePlain("%s\n", ui.Warn("the change is kept for this session but will not survive a restart"))
	}
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", ui.Header(title))
	r.writePlain("═══════════════════════════════════════\n")
}

// syncWriter serializes writes from the menu loop and the playback event printer.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
