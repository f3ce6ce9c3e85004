package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"animeverse/internal/conversation"
	"animeverse/internal/services"
	"animeverse/internal/session"
)

func newChatCommand(ctx *commandContext) *cobra.Command {
	var noStream bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with AnimeVerse Guide and get personalized recommendations",
		Long: "Fill in a short preference form, chat with the guide, then receive a list of top " +
			"recommendations and hidden gems. Afterwards you can start fresh with a new profile. With --json the conversation runs on stderr and only " +
			"the final recommendations are written to stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireLLM(); err != nil {
				return err
			}
			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}
			if noStream {
				cfg.LLM.Stream = false
			}

			ui := newChatUI(cmd, jsonOutput)
			svc := newConversationService(cfg, logger)
			for {
				result, err := ui.run(cmd.Context(), svc)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, result)
				}
				renderRecommendations(ui.out, result.Raw, result.Document, result.Top, result.Gems, renderOptions{
					colorize: ui.colorize,
					width:    ui.width,
				})
				again, err := ui.askStartFresh()
				if err != nil || !again {
					return err
				}
			}
		},
	}

	cmd.Flags().BoolVar(&noStream, "no-stream", false, "Wait for whole replies instead of streaming them")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Write the final recommendations to stdout as JSON")
	return cmd
}

type chatUI struct {
	in       *bufio.Reader
	out      io.Writer
	colorize bool
	width    int
	// state is kept across rounds so starting fresh reuses the session.
	state *session.State
}

func newChatUI(cmd *cobra.Command, jsonOutput bool) *chatUI {
	out := cmd.OutOrStdout()
	if jsonOutput {
		out = cmd.ErrOrStderr()
	}
	return &chatUI{
		in:       bufio.NewReader(cmd.InOrStdin()),
		out:      out,
		colorize: shouldColorize(out),
		width:    terminalWidth(out),
	}
}

func (u *chatUI) run(ctx context.Context, svc *conversation.Service) (conversation.Result, error) {
	for _, line := range renderSectionHeader("AnimeVerse Guide", u.colorize) {
		fmt.Fprintln(u.out, line)
	}
	fmt.Fprintln(u.out, "Tell us about your anime & manga preferences")
	fmt.Fprintln(u.out)

	prefs, err := u.askPreferences()
	if errors.Is(err, io.EOF) {
		return conversation.Result{}, errors.New("input closed before the preference form was complete")
	}
	if err != nil {
		return conversation.Result{}, err
	}
	if u.state == nil {
		u.state = svc.NewState("")
		err = svc.Start(u.state, prefs)
	} else {
		err = svc.Restart(u.state, prefs)
	}
	if err != nil {
		return conversation.Result{}, err
	}
	state := u.state

	fmt.Fprintln(u.out)
	fmt.Fprintln(u.out, "Profile complete. Let's find your next favorite anime or manga!")
	fmt.Fprintln(u.out, "✨ Tell AnimeVerse Guide what kind of stories you're in the mood for today!")
	fmt.Fprintln(u.out)

	if err := u.chat(ctx, svc, state); err != nil {
		return conversation.Result{}, err
	}

	fmt.Fprintln(u.out)
	fmt.Fprintln(u.out, "Creating your personalized anime and manga list...")
	fmt.Fprintln(u.out)
	return svc.Recommend(ctx, state)
}

func (u *chatUI) askPreferences() (session.Preferences, error) {
	var prefs session.Preferences
	var err error
	if prefs.Nickname, err = u.askText("Nickname (optional)", session.MaxNicknameChars); err != nil {
		return prefs, err
	}
	if prefs.FavoriteTitles, err = u.askText("Favorite anime or manga (optional)", session.MaxFavoriteTitlesChars); err != nil {
		return prefs, err
	}
	if prefs.FavoriteGenres, err = u.askText("Favorite genres (optional)", session.MaxFavoriteGenresChars); err != nil {
		return prefs, err
	}
	if prefs.Experience, err = u.askChoice("Experience level", session.ExperienceLevels); err != nil {
		return prefs, err
	}
	if prefs.ContentType, err = u.askChoice("What are you looking for", session.ContentTypes); err != nil {
		return prefs, err
	}
	if prefs.Length, err = u.askChoice("Preferred length", session.ContentLengths); err != nil {
		return prefs, err
	}
	return prefs, nil
}

func (u *chatUI) chat(ctx context.Context, svc *conversation.Service, state *session.State) error {
	for !state.ChatComplete() {
		label := fmt.Sprintf("you (%d left)", state.RemainingUserMessages())
		text, err := u.readLine(speakerLabel(label, ansiGreen, u.colorize))
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("input closed before the chat finished")
			}
			return err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		started := false
		onChunk := func(chunk string) error {
			if !started {
				fmt.Fprint(u.out, speakerLabel("guide", ansiMagenta, u.colorize))
				started = true
			}
			_, err := io.WriteString(u.out, chunk)
			return err
		}
		_, _, err = svc.Send(ctx, state, text, onChunk)
		if started {
			fmt.Fprintln(u.out)
		}
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			return err
		case errors.Is(err, services.ErrValidation):
			fmt.Fprintf(u.out, "%s\n", err)
			continue
		default:
			fmt.Fprintf(u.out, "The guide could not answer that one: %v\n", err)
		}
		fmt.Fprintln(u.out)
	}
	fmt.Fprintf(u.out, "That's all %d messages!\n", state.UserMessageCount())
	return nil
}

func (u *chatUI) askText(label string, limit int) (string, error) {
	for {
		value, err := u.readLine(fmt.Sprintf("%s: ", label))
		if err != nil {
			return "", err
		}
		value = strings.TrimSpace(value)
		if n := utf8.RuneCountInString(value); n > limit {
			fmt.Fprintf(u.out, "Please keep it under %d characters (got %d).\n", limit, n)
			continue
		}
		return value, nil
	}
}

func (u *chatUI) askChoice(label string, options []string) (string, error) {
	fmt.Fprintf(u.out, "%s:\n", label)
	for i, option := range options {
		fmt.Fprintf(u.out, "  %d) %s\n", i+1, option)
	}
	for {
		value, err := u.readLine(fmt.Sprintf("Choose 1-%d [1]: ", len(options)))
		if err != nil {
			return "", err
		}
		if choice, ok := matchChoice(value, options); ok {
			return choice, nil
		}
		fmt.Fprintf(u.out, "Please enter a number between 1 and %d.\n", len(options))
	}
}

// askStartFresh offers another round after the recommendations. Closed
// input ends the session quietly.
func (u *chatUI) askStartFresh() (bool, error) {
	fmt.Fprintln(u.out)
	answer, err := u.readLine("Start fresh with a new profile? [y/N]: ")
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		fmt.Fprintln(u.out)
		return true, nil
	default:
		return false, nil
	}
}

// matchChoice accepts an empty answer (first option), a 1-based index, or
// the option text itself.
func matchChoice(value string, options []string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return options[0], true
	}
	if n, err := strconv.Atoi(value); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1], true
		}
		return "", false
	}
	for _, option := range options {
		if strings.EqualFold(option, value) {
			return option, true
		}
	}
	return "", false
}

// readLine prints prompt and reads one line. A final line without a newline
// is returned normally; io.EOF is reported only when nothing was read.
func (u *chatUI) readLine(prompt string) (string, error) {
	fmt.Fprint(u.out, prompt)
	line, err := u.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
