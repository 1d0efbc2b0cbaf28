package searchctl

import (
	"context"
	"fmt"
	"time"

	"github.com/kestrelchess/caps/pkg/board"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

// TimeControl represents time control information parsed from a UCI "go"
// command.
type TimeControl struct {
	White, Black       time.Duration
	WhiteInc, BlackInc time.Duration
	MovesToGo          int           // 0 == unknown, rest of game
	MoveTime           time.Duration // 0 == not fixed; set by "go movetime N"
}

// Limits returns a soft and hard limit for making a move with the given
// color. The interpretation is that after the soft limit, no new
// iterative-deepening depth should be started; the hard limit aborts a
// search in progress.
func (t TimeControl) Limits(c board.Color) (time.Duration, time.Duration) {
	if t.MoveTime > 0 {
		return t.MoveTime, t.MoveTime
	}

	remainder, inc := t.White, t.WhiteInc
	if c == board.Black {
		remainder, inc = t.Black, t.BlackInc
	}

	movestogo := 30
	if t.MovesToGo > movestogo {
		movestogo = t.MovesToGo
	}

	budget := remainder / time.Duration(movestogo)
	soft := budget + time.Duration(float64(inc)*0.75)

	hard := 10 * soft
	if half := remainder / 2; half < hard {
		hard = half
	}
	return soft, hard
}

func (t TimeControl) String() string {
	if t.MoveTime > 0 {
		return fmt.Sprintf("movetime=%.1f", t.MoveTime.Seconds())
	}
	if t.MovesToGo == 0 {
		return fmt.Sprintf("%.1f(+%.1f)<>%.1f(+%.1f)", t.White.Seconds(), t.WhiteInc.Seconds(), t.Black.Seconds(), t.BlackInc.Seconds())
	}
	return fmt.Sprintf("%.1f(+%.1f)<>%.1f(+%.1f)[movestogo=%v]", t.White.Seconds(), t.WhiteInc.Seconds(), t.Black.Seconds(), t.BlackInc.Seconds(), t.MovesToGo)
}

// EnforceTimeControl enforces the time control limits, if any. Returns the
// soft and hard limits and whether a time control is in effect at all.
func EnforceTimeControl(ctx context.Context, h Handle, tc lang.Optional[TimeControl], turn board.Color) (time.Duration, time.Duration, bool) {
	c, ok := tc.V()
	if !ok {
		return 0, 0, false
	}

	soft, hard := c.Limits(turn)
	time.AfterFunc(hard, func() {
		h.Halt()
	})

	logw.Debugf(ctx, "Time control limits for %v: [%v; %v]", c, soft, hard)
	return soft, hard, true
}
