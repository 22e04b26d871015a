// Command play pits a human against the MCTS engine over stdin/stdout.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	omega "github.com/omega-mcts/omega"
	"github.com/omega-mcts/omega/game"
	"github.com/pkg/errors"
)

var (
	boardSize  = flag.Int("board_size", 5, "hex board radius")
	nodeKind   = flag.String("node", "uct", "search node flavour: uct or rave")
	recycling  = flag.Bool("recycling", true, "use the recycling transposition table replacement policy")
	budget     = flag.Int("budget", 200000, "transposition table node budget in recycling mode")
	msecs      = flag.Int64("msecs", 60000, "total engine clock for the whole game, in milliseconds")
	seed       = flag.Uint64("seed", 1, "RNG seed")
	humanColor = flag.String("human", "black", "which color the human plays: white or black")
)

func parseNodeKind(s string) omega.NodeKind {
	switch s {
	case "uct":
		return omega.UCT
	case "rave":
		return omega.MCRAVE
	default:
		fmt.Fprintf(os.Stderr, "unknown -node %q, want uct or rave\n", s)
		os.Exit(2)
		return 0
	}
}

func parseColor(s string) game.Color {
	switch s {
	case "white":
		return game.White
	case "black":
		return game.Black
	default:
		fmt.Fprintf(os.Stderr, "unknown -human %q, want white or black\n", s)
		os.Exit(2)
		return 0
	}
}

func main() {
	flag.Parse()
	kind := parseNodeKind(*nodeKind)
	human := parseColor(*humanColor)

	d := omega.NewDriver(kind, *boardSize, *recycling, *budget, *seed)
	remaining := *msecs
	scanner := bufio.NewScanner(os.Stdin)

	for !d.State().End() {
		player := d.State().CurrentPlayer()
		if player == human {
			for d.State().CurrentPlayer() == player && !d.State().End() {
				color := d.State().CurrentColor()
				printBoard(d.State())
				fmt.Printf("your move (0-%d), piece will be placed as %s: ", d.State().CellNum()-1, color)
				scanner.Scan()
				cellIdx, err := parseCellIdx(scanner.Text())
				if err != nil {
					fmt.Fprintf(os.Stderr, "%v\n", err)
					continue
				}
				d.Update(d.State().ToMoveIdx(cellIdx, int(color)))
			}
			continue
		}

		start := time.Now()
		moves := d.RunSearch(remaining)
		remaining -= time.Since(start).Milliseconds()
		cellNum := d.State().CellNum()
		fmt.Printf("engine plays cells %d, %d as %s (tree nodes: %d)\n", moves[0]%cellNum, moves[1]%cellNum, player, d.NumNodes())
	}

	printBoard(d.State())
	fmt.Printf("winner: %s (white %d, black %d)\n", d.State().Leader(), d.State().PlayerScore(game.White), d.State().PlayerScore(game.Black))
}

func parseCellIdx(text string) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, errors.Wrap(err, "not a valid cell index")
	}
	return n, nil
}

func printBoard(s *game.State) {
	fmt.Printf("move %d/%d, white=%d black=%d\n", s.MovesPlayed(), s.MovesPlayed()+2*s.NumExpectedMoves(), s.PlayerScore(game.White), s.PlayerScore(game.Black))
}
