package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"sort"

	"kanban_board/internal/domain"
	"kanban_board/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	var addr, token string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print board snapshots pushed over the websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
			if token != "" {
				u.RawQuery = url.Values{"token": {token}}.Encode()
			}

			conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
			if err != nil {
				return fmt.Errorf("dial %s: %w", u.String(), err)
			}
			defer conn.Close()

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)
			go func() {
				<-interrupt
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				conn.Close()
			}()

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
						return nil
					}
					return err
				}
				var env ws.Envelope
				if err := json.Unmarshal(msg, &env); err != nil {
					continue
				}
				if env.Type != ws.MsgSnapshot {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", env.Type, env.Data)
					continue
				}
				var board domain.Board
				if err := json.Unmarshal(env.Data, &board); err != nil {
					return fmt.Errorf("decode snapshot: %w", err)
				}
				printBoard(cmd.OutOrStdout(), board)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "server host:port")
	cmd.Flags().StringVar(&token, "token", "", "JWT when the server requires auth")
	return cmd
}

func printBoard(w io.Writer, b domain.Board) {
	cols := append([]domain.Column(nil), b.Columns...)
	sort.Slice(cols, func(i, j int) bool { return cols[i].Order < cols[j].Order })

	fmt.Fprintln(w, "----")
	for _, c := range cols {
		tasks := b.TasksIn(c.ID)
		fmt.Fprintf(w, "%d %s (%d)\n", c.Order, c.Title, len(tasks))
		for _, t := range tasks {
			fmt.Fprintf(w, "    - %s [%s, %s]\n", t.Title, t.Status, t.Priority)
		}
	}
}
