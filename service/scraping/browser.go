package scraping

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// BrowserRenderer drives a shared headless Chromium for pages a static fetch
// cannot handle. The browser launches lazily on first use.
type BrowserRenderer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func NewBrowserRenderer() *BrowserRenderer {
	return &BrowserRenderer{}
}

func (b *BrowserRenderer) getBrowser() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New().Headless(true)
	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("error launching browser: %v", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("error connecting to browser: %v", err)
	}
	b.launcher = l
	b.browser = browser
	return b.browser, nil
}

// RenderPage loads the page, waits for dynamic content to settle, and
// returns the post-JavaScript DOM.
func (b *BrowserRenderer) RenderPage(ctx context.Context, pageUrl string) (string, error) {
	browser, err := b.getBrowser()
	if err != nil {
		return "", err
	}

	// Page creation panics on a dead browser connection.
	var page *rod.Page
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("error creating page: %v", r)
			}
		}()
		page = browser.MustPage()
	}()
	if page == nil {
		return "", fmt.Errorf("failed to create browser page")
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(30 * time.Second)
	if err := page.Navigate(pageUrl); err != nil {
		return "", fmt.Errorf("error navigating to %s: %v", pageUrl, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("error waiting for page load: %v", err)
	}
	wait := page.WaitRequestIdle(3*time.Second, []string{}, []string{}, nil)
	wait()

	return page.HTML()
}

func (b *BrowserRenderer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			log.Printf("error closing browser: %s", err)
		}
		b.browser = nil
	}
	if b.launcher != nil {
		b.launcher.Cleanup()
		b.launcher = nil
	}
}
