// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot query command for rulechat.
//
// Command: ask
// Short:   Answer a single query and exit
// Aliases: a
//
// Examples:
//   rulechat ask hello there          Print the reply and exit
//   rulechat ask --json what time     JSON output for scripting
//   rulechat --rules demo.json ask hi Query a specific rule file
//
// Exit code is 0 even when the reply is the fallback; scripts that care
// can use --json and check the "fallback" field.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/rulechat/internal/session"
)

// HandleAsk handles the "ask" command: one query, one reply.
func HandleAsk(args Args) error {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return HandleError(ErrMissingArgument("query", "rulechat ask hello there"), args.JSON)
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	store, err := openStore(cfg)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	sess := session.New(cfg.User.ID, cfg.User.Name)
	now := time.Now()

	turn, runErr := eng.RunTurn(query, sess, store.Snapshot(), now)

	if args.JSON {
		out := map[string]interface{}{
			"input":    query,
			"reply":    turn.Reply,
			"intent":   turn.Intent,
			"fallback": turn.Fallback,
			"success":  true,
		}
		if runErr != nil {
			out["note"] = runErr.Error()
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	fmt.Println(RenderReply(turn.Reply, turn.Fallback))
	if runErr != nil {
		fmt.Println(DimStyle.Render("note: " + runErr.Error()))
	}
	return nil
}
