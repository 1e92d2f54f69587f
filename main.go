package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/tilawa/internal/app"
	"github.com/llehouerou/tilawa/internal/catalog"
	"github.com/llehouerou/tilawa/internal/config"
	"github.com/llehouerou/tilawa/internal/errmsg"
	"github.com/llehouerou/tilawa/internal/gate"
	"github.com/llehouerou/tilawa/internal/icons"
	"github.com/llehouerou/tilawa/internal/identity"
	"github.com/llehouerou/tilawa/internal/logging"
	"github.com/llehouerou/tilawa/internal/media"
	"github.com/llehouerou/tilawa/internal/metrics"
	"github.com/llehouerou/tilawa/internal/mpris"
	"github.com/llehouerou/tilawa/internal/notify"
	"github.com/llehouerou/tilawa/internal/playback"
	"github.com/llehouerou/tilawa/internal/resolver"
	"github.com/llehouerou/tilawa/internal/retry"
	"github.com/llehouerou/tilawa/internal/state"
	"github.com/llehouerou/tilawa/internal/transport"
	"github.com/llehouerou/tilawa/internal/ui/headerbar"
)

const catalogTimeout = 15 * time.Second

type flags struct {
	surah    int
	verse    int
	voice    string
	autoplay bool
}

func parseFlags() flags {
	var f flags
	flag.IntVar(&f.surah, "surah", 1, "surah number (1-114)")
	flag.IntVar(&f.verse, "verse", 1, "verse to start from")
	flag.StringVar(&f.voice, "voice", "", "reciter, overrides the remembered one")
	flag.BoolVar(&f.autoplay, "autoplay", false, "start reciting immediately")
	flag.Parse()
	return f
}

func main() {
	if err := run(parseFlags()); err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}
}

func run(f flags) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := logging.Setup(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	// The audio backend prints to stderr, which would corrupt the TUI.
	capture, err := logging.CaptureStderr(logger)
	if err != nil {
		logger.Warn().Err(err).Msg("stderr capture unavailable")
	} else {
		defer capture.Stop()
	}

	icons.Init(cfg.GetIcons())

	store, err := state.Open(logger)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer store.Close()

	pb := cfg.GetPlaybackConfig()
	prefs, err := store.LoadPrefs(state.Prefs{
		Voice:  cfg.GetDefaultVoice(),
		Speed:  pb.Speed,
		Mode:   pb.DefaultMode,
		Volume: pb.Volume,
	})
	if err != nil {
		logger.Warn().Err(err).Msg(string(errmsg.OpPrefsLoad))
	}
	if f.voice != "" {
		prefs.Voice = f.voice
	}

	tokens := identity.NewTokenFile(cfg.Identity.TokenFile, logger)
	f = resumeAfterSignIn(f, store, tokens, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cc := cfg.GetCatalogConfig()
	cat := catalog.New(catalog.WithBaseURL(cc.BaseURL), catalog.WithEdition(cc.Edition))
	fetchCtx, cancelFetch := context.WithTimeout(ctx, catalogTimeout)
	surah, items, err := cat.Items(fetchCtx, f.surah, cc.Translation)
	cancelFetch()
	if err != nil {
		return fmt.Errorf("%s %d: %w", errmsg.OpCatalogLoad, f.surah, err)
	}

	res, err := resolver.New(cfg.GetAudioBaseURL(), cfg.GetVoices())
	if err != nil {
		return err
	}
	g := gate.New(cfg.GetPreviewThreshold(), tokens)

	var announcer *notify.Announcer
	if cfg.NotificationsEnabled() {
		n, err := notify.New(notify.WithOpener(openBrowser))
		if err != nil {
			logger.Warn().Err(err).Msg("notifications unavailable")
		} else {
			announcer = notify.NewAnnouncer(n, surah.EnglishName, logger)
		}
	}

	var prog atomic.Pointer[tea.Program]
	// The browser outlives the request that opened it.
	opener := func(_ context.Context, loginURL string) error {
		if p := prog.Load(); p != nil {
			p.Send(app.LoginURLMsg{URL: loginURL})
		}
		return openBrowser(loginURL)
	}
	redirector := &announcingRedirector{
		next:      identity.NewRedirector(cfg.Identity.LoginURL, store, opener, logger),
		loginURL:  cfg.Identity.LoginURL,
		announcer: announcer,
	}

	mode, err := playback.ParseMode(prefs.Mode)
	if err != nil {
		logger.Warn().Err(err).Msg("remembered mode")
	}

	rec := metrics.New()
	session, err := playback.New(playback.Config{
		CollectionID: f.surah,
		Items:        items,
		StartNumber:  f.verse,
		Primary:      media.NewStream(media.WithLogger(logger)),
		Speculative:  media.NewStream(media.WithLogger(logger)),
		Resolver:     res,
		Gate:         g,
		Redirector:   redirector,
		Retry:        retry.Policy{MaxRetries: pb.MaxRetries, BaseDelay: pb.RetryBaseDelay},
		ReadyTimeout: pb.ReadyTimeout,
		SettleDelay:  pb.SettleDelay,
		Mode:         mode,
		Voice:        prefs.Voice,
		Speed:        prefs.Speed,
		Volume:       prefs.Volume,
		Muted:        prefs.Muted,
		Recorder:     rec,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("start playback: %w", err)
	}
	defer session.Close()

	tr := transport.New(session,
		transport.WithVoices(res),
		transport.WithPrefs(store),
		transport.WithLogger(logger),
	)

	if mp, err := mpris.New(tr, surah.EnglishName); err != nil {
		logger.Warn().Err(err).Msg("mpris unavailable")
	} else {
		defer mp.Close()
	}

	if cfg.HasMetrics() {
		if err := metrics.NewServer(cfg.Metrics.Addr, rec, tr, logger).Start(ctx); err != nil {
			logger.Error().Err(err).Msg("metrics server")
		}
	}

	m := app.New(app.Options{
		Session:   session,
		Transport: tr,
		Surah: headerbar.Info{
			Number:      surah.Number,
			Name:        surah.EnglishName,
			ArabicName:  surah.Name,
			TotalVerses: len(items),
		},
		Gate:      g,
		Announcer: announcer,
		Autoplay:  f.autoplay,
		Logger:    logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	prog.Store(p)

	if stop, err := cfg.Watch(func(c *config.Config, err error) {
		if err != nil {
			p.Send(app.ConfigReloadedMsg{Err: err})
			return
		}
		p.Send(app.ConfigReloadedMsg{Icons: c.GetIcons()})
	}); err != nil {
		logger.Warn().Err(err).Msg("config watch")
	} else {
		defer stop()
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// resumeAfterSignIn starts from a saved resume point once the caller has
// signed in. Without an identity the point is kept for the next launch.
func resumeAfterSignIn(f flags, store *state.Store, id gate.IdentityProvider, log zerolog.Logger) flags {
	r, err := store.TakeResume()
	if err != nil {
		log.Warn().Err(err).Msg("read resume point")
		return f
	}
	if r == nil {
		return f
	}
	if caller := id.CallerIdentity(); caller == nil || !caller.Verified {
		if err := store.SaveResume(*r); err != nil {
			log.Warn().Err(err).Msg("keep resume point")
		}
		return f
	}
	log.Info().Stringer("resume", r).Msg("resuming after sign-in")
	f.surah, f.verse = r.CollectionID, r.ItemNumber
	return f
}

// openBrowser starts xdg-open on url.
func openBrowser(url string) error {
	_, err := startReaped(exec.Command("xdg-open", url))
	return err
}

// startReaped starts cmd without tying it to any context and waits for it in
// the background. The returned channel yields the exit status.
func startReaped(cmd *exec.Cmd) (<-chan error, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	return done, nil
}

// announcingRedirector also raises a desktop notification, since the UI may
// be hidden behind the browser.
type announcingRedirector struct {
	next      gate.Redirector
	loginURL  string
	announcer *notify.Announcer
}

func (a *announcingRedirector) RequestIdentityThenResume(ctx context.Context, r gate.Redirect) error {
	err := a.next.RequestIdentityThenResume(ctx, r)
	if a.announcer != nil {
		if u, uerr := identity.LoginURL(a.loginURL, r); uerr == nil {
			a.announcer.SignIn(r.ItemNumber, u)
		}
	}
	return err
}
