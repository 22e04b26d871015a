// Command selfplay runs the engine against itself for a number of
// games, optionally pitting UCT against MC-RAVE, and reports the
// match tally.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	omega "github.com/omega-mcts/omega"
	"github.com/omega-mcts/omega/mcts"
)

var (
	boardSize = flag.Int("board_size", 5, "hex board radius")
	games     = flag.Int("games", 20, "number of games to play")
	msecs     = flag.Int64("msecs", 5000, "per-side total engine clock per game, in milliseconds")
	whiteNode = flag.String("white_node", "uct", "white's search node flavour: uct or rave")
	blackNode = flag.String("black_node", "rave", "black's search node flavour: uct or rave")
	recycling = flag.Bool("recycling", true, "use the recycling transposition table replacement policy")
	budget    = flag.Int("budget", 50000, "transposition table node budget in recycling mode")
	seed      = flag.Uint64("seed", 1, "RNG seed")
)

func parseNodeKind(flagName, s string) omega.NodeKind {
	switch s {
	case "uct":
		return omega.UCT
	case "rave":
		return omega.MCRAVE
	default:
		fmt.Fprintf(os.Stderr, "unknown -%s %q, want uct or rave\n", flagName, s)
		os.Exit(2)
		return 0
	}
}

func main() {
	flag.Parse()

	if err := mcts.ValidateBudget(time.Duration(*msecs)*time.Millisecond, 0); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -msecs: %v\n", err)
		os.Exit(2)
	}

	white := omega.PlayerConfig{Kind: parseNodeKind("white_node", *whiteNode), Recycling: *recycling, Budget: *budget}
	black := omega.PlayerConfig{Kind: parseNodeKind("black_node", *blackNode), Recycling: *recycling, Budget: *budget}

	arena := omega.NewArena(*boardSize, *msecs, white, black)
	result := arena.PlayMatch(*games, *seed)

	fmt.Printf("played %d games (%d total moves)\n", *games, result.Moves)
	fmt.Printf("white (%s): %d wins\n", *whiteNode, result.WhiteWins)
	fmt.Printf("black (%s): %d wins\n", *blackNode, result.BlackWins)
	fmt.Printf("draws: %d\n", result.Draws)
}
