// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command for rulechat.
//
// Command: status
// Short:   Show configuration and rule status
// Aliases: s
//
// Examples:
//   rulechat status           Human-readable status
//   rulechat status --json    Machine-readable status
//
// Status answers three questions: which config is in effect, whether
// the rule file loads, and whether transcript storage is reachable.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/jeranaias/rulechat/internal/config"
	"github.com/jeranaias/rulechat/internal/storage"
)

// HandleStatus handles the "status" command.
func HandleStatus(args Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	// Rule load outcome is part of the status report, not a fatal error.
	var ruleCount int
	var intents []string
	store, ruleErr := openStore(cfg)
	if ruleErr == nil {
		collection := store.Snapshot()
		ruleCount = collection.Len()
		intents = collection.Intents()
	}

	transcriptPath := ""
	transcriptErr := error(nil)
	if cfg.Storage.Transcripts {
		transcriptPath = cfg.Storage.DatabasePath
		if transcriptPath == "" {
			transcriptPath, transcriptErr = storage.DefaultPath()
		}
	}

	if args.JSON {
		return printStatusJSON(cfg, ruleCount, intents, ruleErr, transcriptPath, transcriptErr)
	}

	configPath := "(defaults)"
	if p, err := config.ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(p); statErr == nil {
			configPath = p
		}
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("rulechat status"))

	fmt.Println(SectionStyle.Render("Configuration"))
	fmt.Printf("  %s %s\n", RenderLabel("Config file:"), configPath)
	fmt.Printf("  %s %s\n", RenderLabel("User:"), cfg.User.Name)
	fmt.Printf("  %s %s\n", RenderLabel("Selection:"), cfg.Responses.Selection)

	fmt.Println(SectionStyle.Render("Rules"))
	fmt.Printf("  %s %s\n", RenderLabel("Rule file:"), cfg.Rules.Path)
	if ruleErr != nil {
		fmt.Printf("  %s %s %s\n", RenderLabel("Load:"), RenderStatus("fail"), ruleErr.Error())
	} else {
		fmt.Printf("  %s %s %d rule(s), %d intent(s)\n",
			RenderLabel("Load:"), RenderStatus("ok"), ruleCount, len(intents))
	}
	fmt.Printf("  %s %v\n", RenderLabel("Watch:"), cfg.Rules.Watch)

	fmt.Println(SectionStyle.Render("Transcripts"))
	if !cfg.Storage.Transcripts {
		fmt.Printf("  %s disabled\n", RenderLabel("Storage:"))
	} else if transcriptErr != nil {
		fmt.Printf("  %s %s %s\n", RenderLabel("Storage:"), RenderStatus("fail"), transcriptErr.Error())
	} else {
		fmt.Printf("  %s %s\n", RenderLabel("Database:"), transcriptPath)
	}
	fmt.Println()

	if ruleErr != nil {
		return ruleErr
	}
	return nil
}

// printStatusJSON emits the status report as JSON.
func printStatusJSON(cfg *config.Config, ruleCount int, intents []string, ruleErr error, transcriptPath string, transcriptErr error) error {
	rulesOut := map[string]interface{}{
		"path":   cfg.Rules.Path,
		"watch":  cfg.Rules.Watch,
		"loaded": ruleErr == nil,
	}
	if ruleErr != nil {
		rulesOut["error"] = ruleErr.Error()
	} else {
		rulesOut["rule_count"] = ruleCount
		rulesOut["intents"] = intents
	}

	storageOut := map[string]interface{}{
		"enabled": cfg.Storage.Transcripts,
	}
	if cfg.Storage.Transcripts {
		if transcriptErr != nil {
			storageOut["error"] = transcriptErr.Error()
		} else {
			storageOut["database"] = transcriptPath
		}
	}

	out := map[string]interface{}{
		"version": Version,
		"user":    cfg.User.Name,
		"selection": map[string]interface{}{
			"strategy": cfg.Responses.Selection,
		},
		"rules":   rulesOut,
		"storage": storageOut,
		"success": ruleErr == nil,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return err
	}
	if ruleErr != nil {
		return ruleErr
	}
	return nil
}

// HandleIntents handles the "intents" command: list intents in match order.
func HandleIntents(args Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	store, err := openStore(cfg)
	if err != nil {
		return HandleError(err, args.JSON)
	}
	collection := store.Snapshot()

	if args.JSON {
		out := map[string]interface{}{
			"intents": collection.Intents(),
			"count":   collection.Len(),
			"source":  store.Source().Describe(),
			"success": true,
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	if collection.Len() == 0 {
		fmt.Println("No rules loaded.")
		return nil
	}

	fmt.Printf("%d intent(s) in match order from %s:\n", collection.Len(), store.Source().Describe())
	for i, rule := range collection {
		fmt.Printf("  %2d. %s  %s\n", i+1, rule.Intent,
			DimStyle.Render(fmt.Sprintf("(%d pattern(s), %d response(s))", len(rule.Patterns), len(rule.Responses))))
	}
	return nil
}

// HandleConfigCommand handles the "config" command:
//   - config             list all keys and values
//   - config KEY         print one value
//   - config KEY VALUE   set and save one value
func HandleConfigCommand(args Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	if args.ConfigKey == "" {
		if args.JSON {
			fmt.Println(cfg.String())
			return nil
		}
		for _, key := range config.GetAllKeys() {
			value, err := cfg.Get(key)
			if err != nil {
				continue
			}
			fmt.Printf("  %s %v\n", RenderLabel(key+":", 26), value)
		}
		return nil
	}

	if args.ConfigVal == "" {
		value, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return HandleError(err, args.JSON)
		}
		fmt.Printf("%v\n", value)
		return nil
	}

	// Normalize boolean keys up front so friendly spellings like "yes"
	// and "off" work, and typos are rejected instead of silently
	// becoming false.
	value := args.ConfigVal
	if cur, getErr := cfg.Get(args.ConfigKey); getErr == nil {
		if _, isBool := cur.(bool); isBool {
			b, parseErr := ParseBoolString(args.ConfigVal)
			if parseErr != nil {
				return HandleError(NewValidationErrorWithExample(
					args.ConfigKey, args.ConfigVal, "must be a boolean",
					"rulechat config rules.watch on"), args.JSON)
			}
			value = strconv.FormatBool(b)
		}
	}

	// Validate the change on a copy before touching the saved file.
	trial := cfg.Clone()
	if err := trial.Set(args.ConfigKey, value); err != nil {
		return HandleError(err, args.JSON)
	}
	if err := trial.Validate(); err != nil {
		return HandleError(err, args.JSON)
	}

	if err := cfg.Set(args.ConfigKey, value); err != nil {
		return HandleError(err, args.JSON)
	}
	if err := config.Save(cfg); err != nil {
		return HandleError(WrapError(err, "saving configuration"), args.JSON)
	}

	fmt.Printf("%s %s = %s\n", SuccessStyle.Render("Saved"), args.ConfigKey, value)
	return nil
}
