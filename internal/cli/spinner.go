package cli

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// spinnerFrames is the glyph cycle rendered while a stage runs.
var spinnerFrames = []string{"◜", "◠", "◝", "◞", "◡", "◟"}

const spinnerInterval = 90 * time.Millisecond

// Spinner animates a one-line status on stderr while a conversion stage
// runs, then replaces it with the outcome and the elapsed time. Stderr
// keeps piped XML or JSON on stdout clean.
//
// A Spinner is single-use: Start once, then exactly one Stop variant.
type Spinner struct {
	mu      sync.Mutex
	message string
	start   time.Time
	ticker  *time.Ticker
	quit    chan struct{}
	idle    sync.WaitGroup
}

func newSpinner(message string) *Spinner {
	return &Spinner{message: message, quit: make(chan struct{})}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.start = time.Now()
	s.ticker = time.NewTicker(spinnerInterval)
	s.idle.Add(1)
	go s.loop()
}

func (s *Spinner) loop() {
	defer s.idle.Done()
	for frame := 0; ; frame++ {
		select {
		case <-s.quit:
			return
		case <-s.ticker.C:
			s.mu.Lock()
			fmt.Fprintf(os.Stderr, "\r%s %s",
				styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)]),
				StyleDim.Render(s.message))
			s.mu.Unlock()
		}
	}
}

// Stop halts the animation and erases the status line.
func (s *Spinner) Stop() {
	s.ticker.Stop()
	close(s.quit)
	s.idle.Wait()
	s.mu.Lock()
	fmt.Fprint(os.Stderr, "\r\x1b[2K")
	s.mu.Unlock()
}

// StopWithSuccess stops the spinner and prints the outcome with the time
// the stage took.
func (s *Spinner) StopWithSuccess(format string, args ...any) {
	elapsed := time.Since(s.start).Round(time.Millisecond)
	s.Stop()
	printSuccess("%s %s",
		fmt.Sprintf(format, args...),
		StyleDim.Render(fmt.Sprintf("(%s)", elapsed)))
}

// StopWithError stops the spinner and prints the failure.
func (s *Spinner) StopWithError(err error) {
	s.Stop()
	printError("%s", err)
}
