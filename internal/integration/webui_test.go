package integration_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"pkt.systems/retroterm/httpapi"
)

func TestWebUI(t *testing.T) {
	requireLong(t)
	requireBrowser(t)

	srv := httpapi.NewServer(httpapi.Config{}, newTestFactory(t))
	t.Cleanup(srv.Close)
	server := httptest.NewServer(srv.Handler())
	t.Cleanup(server.Close)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1024, 640),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := chromedp.Run(ctx); err != nil {
		t.Fatalf("chromedp failed to start: %v", err)
	}

	var frameText string
	var opened []string
	err := chromedp.Run(ctx,
		chromedp.Navigate(server.URL),
		chromedp.Evaluate(`window.__opened = []; window.open = function(url) { window.__opened.push(String(url)); return null; };`, nil),
		chromedp.WaitVisible(`#terminal`, chromedp.ByID),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForFrameOp(ctx, "Type 'help' for further information", 10*time.Second)
		}),
		chromedp.Focus(`#terminal`, chromedp.ByID),
		chromedp.KeyEvent("echo from browser\r"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForFrameOp(ctx, "from browser", 10*time.Second)
		}),
		chromedp.KeyEvent("cat contact.txt\r"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForFrameOp(ctx, "https://retro.example", 10*time.Second)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var x, y float64
			if err := chromedp.Evaluate(`(() => { const l = window.__retroterm.frame.links[0]; return (l.rect.startX + l.rect.endX) / 2; })()`, &x).Do(ctx); err != nil {
				return err
			}
			if err := chromedp.Evaluate(`(() => { const l = window.__retroterm.frame.links[0]; return l.rect.y + l.rect.lineHeight / 2; })()`, &y).Do(ctx); err != nil {
				return err
			}
			return chromedp.MouseClickXY(x, y).Do(ctx)
		}),
		chromedp.Evaluate(`window.__opened`, &opened),
		chromedp.Evaluate(`window.__retroterm.frame.ops.filter(o => o.op === 'text').map(o => o.text).join('\n')`, &frameText),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("chromedp timed out: %v", err)
		}
		t.Fatalf("chromedp failed: %v", err)
	}

	if !containsAll(frameText, []string{"guest@retro:~$ echo from browser", "guest@retro:~$ cat contact.txt"}) {
		t.Fatalf("unexpected terminal output: %s", frameText)
	}
	if len(opened) != 1 || opened[0] != "https://retro.example" {
		t.Fatalf("expected link click to open https://retro.example, got %v", opened)
	}
}

func waitForFrameOp(ctx context.Context, needle string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var last string
	for time.Now().Before(deadline) {
		var text string
		err := chromedp.Evaluate(`(window.__retroterm && window.__retroterm.frame) ? window.__retroterm.frame.ops.filter(o => o.op === 'text').map(o => o.text).join('\n') : ''`, &text).Do(ctx)
		if err == nil {
			last = text
			if strings.Contains(text, needle) {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for frame to include %q (last=%q)", needle, last)
}
