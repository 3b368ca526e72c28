package rotowire

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

const DefaultPrevDaySelector = `[data-direction="prev"], .lineups-viz__nav-prev, a[aria-label="Previous Day"]`

type BrowserConfig struct {
	ExecPath          string
	Headless          bool
	UserAgent         string
	PrevDaySelector   string
	NavigationTimeout time.Duration
	SessionTimeout    time.Duration
	SettleDelay       time.Duration
	Logger            *logging.Logger
}

// ChromeNavigator drives a headless Chrome through chromedp. Each Snapshot
// call owns one browser process for its whole duration.
type ChromeNavigator struct {
	cfg    BrowserConfig
	logger *logging.Logger
}

func NewChromeNavigator(cfg BrowserConfig) *ChromeNavigator {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 60 * time.Second
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = 120 * time.Second
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 1500 * time.Millisecond
	}
	if strings.TrimSpace(cfg.PrevDaySelector) == "" {
		cfg.PrevDaySelector = DefaultPrevDaySelector
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &ChromeNavigator{cfg: cfg, logger: logger.Named("browser")}
}

// session is one acquired browser. release must run on every exit path.
type session struct {
	ctx     context.Context
	release func()
}

func (n *ChromeNavigator) acquire(ctx context.Context) session {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", n.cfg.Headless),
		chromedp.UserAgent(n.cfg.UserAgent),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if n.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(n.cfg.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	sessionCtx, cancelSession := context.WithTimeout(browserCtx, n.cfg.SessionTimeout)

	return session{
		ctx: sessionCtx,
		release: func() {
			cancelSession()
			cancelBrowser()
			cancelAlloc()
		},
	}
}

func (n *ChromeNavigator) Snapshot(ctx context.Context, pageURL string, daysBack int) (string, error) {
	s := n.acquire(ctx)
	defer s.release()

	// Start the browser on the session context so per-step timeouts below
	// only bound their own actions.
	if err := chromedp.Run(s.ctx); err != nil {
		return "", crerr.Wrap(err, "start browser")
	}

	navCtx, cancelNav := context.WithTimeout(s.ctx, n.cfg.NavigationTimeout)
	err := chromedp.Run(navCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	cancelNav()
	if err != nil {
		return "", crerr.Wrapf(err, "navigate %s", pageURL)
	}

	for step := 0; step < daysBack; step++ {
		stepCtx, cancelStep := context.WithTimeout(s.ctx, n.cfg.NavigationTimeout)
		err := chromedp.Run(stepCtx,
			chromedp.WaitVisible(n.cfg.PrevDaySelector, chromedp.ByQuery),
			chromedp.Click(n.cfg.PrevDaySelector, chromedp.ByQuery),
			chromedp.Sleep(n.cfg.SettleDelay),
		)
		cancelStep()
		if err != nil {
			return "", crerr.Wrapf(err, "step back day %d of %d", step+1, daysBack)
		}
	}

	var markup string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		return "", crerr.Wrap(err, "read rendered page")
	}
	n.logger.DebugContext(ctx, "browser snapshot captured", "days_back", daysBack, "bytes", len(markup))
	return markup, nil
}
