// Command localplay is a hot-seat terminal game against the same engine the
// server uses. Input: "e2 e4" to move, "swap a1 b1" to swap, "quit" to stop.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"swapchess/internal/game"
)

func main() {
	board := game.NewBoard()
	turn := game.White
	var played []game.Result

	reader := bufio.NewScanner(os.Stdin)
	for game.HasKing(board, game.White) && game.HasKing(board, game.Black) {
		fmt.Printf("\nTurn: %s   material: %v\n", turn, game.Material(board))
		printBoard(board)
		fmt.Print("> ")
		if !reader.Scan() {
			break
		}
		line := strings.TrimSpace(reader.Text())
		if line == "quit" {
			break
		}

		res, err := apply(&board, turn, strings.Fields(line))
		if err != nil {
			fmt.Println("Invalid:", err)
			continue
		}
		played = append(played, res)
		fmt.Println(res.Notation)
		turn = turn.Opponent()
	}

	fmt.Println("\nGame over.")
	fmt.Println("FEN:", board.FEN())
	js, _ := json.MarshalIndent(played, "", "  ")
	fmt.Println(string(js))
}

func apply(b *game.Board, turn game.Color, parts []string) (game.Result, error) {
	kind := game.ActionMove
	if len(parts) == 3 && parts[0] == "swap" {
		kind = game.ActionSwap
		parts = parts[1:]
	}
	if len(parts) != 2 {
		return game.Result{}, fmt.Errorf("expected two squares")
	}
	from, err := game.ParseSquare(parts[0])
	if err != nil {
		return game.Result{}, err
	}
	to, err := game.ParseSquare(parts[1])
	if err != nil {
		return game.Result{}, err
	}
	if kind == game.ActionSwap {
		return game.ApplySwap(b, from, to, turn)
	}
	if p := b.At(from); !p.IsEmpty() && p.Color() != turn {
		return game.Result{}, game.ErrNotOwnPiece
	}
	return game.ApplyMove(b, from, to)
}

func printBoard(b game.Board) {
	for r := 0; r < game.Size; r++ {
		fmt.Printf("%d ", game.Size-r)
		for c := 0; c < game.Size; c++ {
			if p := b[r][c]; p.IsEmpty() {
				fmt.Print(". ")
			} else {
				fmt.Printf("%s ", p)
			}
		}
		fmt.Println()
	}
	fmt.Println("  a b c d e f g h")
}
