package platform

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gammazero/deque"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/exp/maps"

	"lautenbacher.net/godimmer/config"
	"lautenbacher.net/godimmer/hal"
	"lautenbacher.net/godimmer/logging"
)

const (
	// pressLength is how long a key press holds a simulated button down.
	pressLength = 150 * time.Millisecond
	// historyLength is the number of duty samples in the sparkline.
	historyLength = 60
	// sampleInterval is how often the duty history is sampled.
	sampleInterval = 100 * time.Millisecond
)

var sparks = []rune("▁▂▃▄▅▆▇█")

// TUIPlatform simulates the dimmer's buttons and LEDs in a terminal.
type TUIPlatform struct {
	*AbstractPlatform
	tviewapp     *tview.Application
	intro        *tview.TextView
	ledDisplay   *tview.TextView
	logView      *tview.TextView
	ossignalChan chan os.Signal
	start        *hal.SimPin
	cycle        *hal.SimPin
	toggle       *hal.SimPin
	bank         *outputBank
	history      deque.Deque[float64]
	logFlushOnce sync.Once
}

func NewTUIPlatform(conf *config.Config, ossignalchan chan os.Signal) *TUIPlatform {
	inst := &TUIPlatform{
		AbstractPlatform: newAbstractPlatform(conf),
		ossignalChan:     ossignalchan,
		start:            hal.NewSimInput("start"),
		cycle:            hal.NewSimInput("cycle"),
		toggle:           hal.NewSimInput("toggle"),
		bank:             newOutputBank(),
	}
	inst.pins.Start = inst.start
	inst.pins.Cycle = inst.cycle
	inst.pins.Toggle = inst.toggle
	inst.bank.wire(&inst.pins)
	return inst
}

func (s *TUIPlatform) Start() error {
	s.initSimulationTUI()

	s.wg.Add(1)
	go s.displayDriver()
	return nil
}

func (s *TUIPlatform) Stop() {
	s.stopGoroutines()
	s.outputsLow()
	if s.tviewapp != nil {
		s.tviewapp.Stop()
	}
}

// keyHelp lists the key bindings shown in the intro pane.
var keyHelp = map[string]string{
	"s": "start / cancel",
	"c": "cycle duration",
	"t": "toggle power",
	"r": "reload",
	"q": "quit",
}

func (s *TUIPlatform) getIntroText() string {
	keys := maps.Keys(keyHelp)
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("[#ff0000]%s[-] %s", k, keyHelp[k]))
	}
	timing := s.config.Dimmer
	line1 := fmt.Sprintf("Steps: [#ffff00]%d[white] | Unit: [#ffff00]%s[white] | Presets: [#ffff00]%v[white]", timing.Steps, timing.TimeUnit, timing.Durations)
	return line1 + "\n" + strings.Join(parts, "  ")
}

func (s *TUIPlatform) initSimulationTUI() {
	s.tviewapp = tview.NewApplication()

	s.intro = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.intro.SetText(s.getIntroText())
	s.intro.SetBorder(true).SetTitle(" GODIMMER Simulation ").SetTitleColor(tcell.ColorLightBlue)
	s.intro.SetBackgroundColor(tcell.NewRGBColor(20, 20, 20))

	s.ledDisplay = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	s.ledDisplay.SetBorder(true)
	s.ledDisplay.SetBackgroundColor(tcell.NewRGBColor(30, 30, 30))

	s.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() {
			s.logView.ScrollToEnd()
			s.tviewapp.Draw()
		})
	s.logView.SetBorder(true).SetTitle(" Logs ").SetTitleColor(tcell.ColorLightBlue)
	s.logView.SetBackgroundColor(tcell.NewRGBColor(40, 40, 40))

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.intro, 4, 0, false).
		AddItem(s.ledDisplay, 7, 0, false).
		AddItem(s.logView, 0, 1, true)

	s.tviewapp.SetAfterDrawFunc(func(screen tcell.Screen) {
		s.logFlushOnce.Do(func() {
			if err := logging.SetOutput(tview.ANSIWriter(s.logView)); err != nil {
				slog.Error("Failed to attach log pane", "error", err)
			}
			close(s.readyChan)
		})
	})

	s.tviewapp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			s.ossignalChan <- os.Interrupt
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 's', 'S':
				s.pressButton(s.start)
				return nil
			case 'c', 'C':
				s.pressButton(s.cycle)
				return nil
			case 't', 'T':
				s.pressToggle()
				return nil
			case 'q', 'Q':
				s.ossignalChan <- os.Interrupt
				return nil
			case 'r', 'R':
				s.ossignalChan <- syscall.SIGHUP
				return nil
			}
		case tcell.KeyUp:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row-1, col)
			return nil
		case tcell.KeyDown:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row+1, col)
			return nil
		}
		return event
	})

	go func() {
		if err := s.tviewapp.SetRoot(layout, true).Run(); err != nil {
			slog.Error("Error running TUI", "error", err)
			s.ossignalChan <- os.Interrupt
		}
	}()
}

func (s *TUIPlatform) pressButton(pin *hal.SimPin) {
	slog.Debug("Simulated press", "button", pin.Name())
	pin.Press()
	time.AfterFunc(pressLength, pin.Release)
}

// pressToggle pulls the toggle line low and delivers the falling edge on
// its own goroutine, the way an interrupt arrives independently of the
// control loop.
func (s *TUIPlatform) pressToggle() {
	s.toggle.Press()
	time.AfterFunc(pressLength, s.toggle.Release)
	go s.fireEdge()
}

// displayDriver redraws the LED pane on output changes and samples the
// duty history.
func (s *TUIPlatform) displayDriver() {
	defer s.wg.Done()
	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopChan:
			slog.Info("Ending display driver go-routine (TUI)")
			return
		case <-s.bank.events.Channel():
			s.redraw(s.bank.events.Value())
		case <-ticker.C:
			snap := s.bank.snapshot()
			s.history.PushBack(snap.Duty)
			for s.history.Len() > historyLength {
				s.history.PopFront()
			}
			s.redraw(snap)
		}
	}
}

func (s *TUIPlatform) redraw(snap bankSnapshot) {
	text := renderBank(snap, &s.history)
	s.tviewapp.QueueUpdateDraw(func() {
		s.ledDisplay.SetText(text)
	})
}

func renderBank(snap bankSnapshot, history *deque.Deque[float64]) string {
	var buf strings.Builder
	buf.WriteString(" ")
	for i, name := range outputNames[:bankPWM] {
		if snap.Levels[i] == hal.High {
			buf.WriteString(fmt.Sprintf("[#ffff00]● %s[-]   ", name))
		} else {
			buf.WriteString(fmt.Sprintf("[#555555]○ %s[-]   ", name))
		}
	}
	buf.WriteString("\n\n ")

	const barWidth = 40
	filled := int(snap.Duty*barWidth + 0.5)
	buf.WriteString(fmt.Sprintf("PWM %3.0f%% [#ffaa00]%s[#333333]%s[-]\n\n ",
		snap.Duty*100, strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled)))

	buf.WriteString("[#66aaff]")
	for i := 0; i < history.Len(); i++ {
		buf.WriteRune(spark(history.At(i)))
	}
	buf.WriteString("[-]")
	return buf.String()
}

func spark(duty float64) rune {
	idx := int(duty * float64(len(sparks)-1))
	return sparks[min(max(idx, 0), len(sparks)-1)]
}
