package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/a-h/vlmchat/catalog"
	"github.com/a-h/vlmchat/selection"
	"github.com/a-h/vlmchat/vlm"
	"github.com/muesli/reflow/wordwrap"
)

var (
	ErrNoImages    = errors.New("no images found")
	ErrInterrupted = errors.New("interrupted")
	errQuit        = errors.New("quit")
)

type Generator interface {
	Generate(ctx context.Context, mode vlm.ConversationMode, imagePaths []string, text string) (string, error)
}

func New(log *slog.Logger, in Input, out io.Writer, images []catalog.Image, gen Generator, mode vlm.ConversationMode) (*Session, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	return &Session{
		log:    log,
		in:     in,
		out:    out,
		images: images,
		gen:    gen,
		mode:   mode,
		Width:  80,
	}, nil
}

// Session is the interactive select-ask-answer loop. Every turn is an
// independent single-shot prompt.
type Session struct {
	log    *slog.Logger
	in     Input
	out    io.Writer
	images []catalog.Image
	gen    Generator
	mode   vlm.ConversationMode
	// Width that answers are wrapped to.
	Width int
}

var quitTokens = []string{"quit", "exit", "q"}

func IsQuit(text string) bool {
	for _, t := range quitTokens {
		if strings.EqualFold(text, t) {
			return true
		}
	}
	return false
}

func PrintBanner(out io.Writer) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(out)
	fmt.Fprintln(out, headingStyle.Render(rule))
	fmt.Fprintln(out, headingStyle.Render("  VLM Local Image Analyzer"))
	fmt.Fprintln(out, headingStyle.Render(rule))
	fmt.Fprintln(out)
}

// Run loops until the user quits or interrupts, both of which return nil.
// Generation errors are shown and the loop carries on.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, successStyle.Render("Interactive mode started. Type 'quit' to exit."))
	fmt.Fprintln(s.out)
	for {
		err := s.turn(ctx)
		switch {
		case err == nil:
			continue
		case errors.Is(err, errQuit):
			fmt.Fprintln(s.out)
			fmt.Fprintln(s.out, promptStyle.Render("Exiting..."))
			return nil
		case errors.Is(err, ErrInterrupted):
			fmt.Fprintln(s.out)
			fmt.Fprintln(s.out)
			fmt.Fprintln(s.out, promptStyle.Render("Interrupted. Exiting..."))
			return nil
		default:
			return err
		}
	}
}

func (s *Session) turn(ctx context.Context) error {
	if ctx.Err() != nil {
		return ErrInterrupted
	}

	s.displayCatalog()
	selected, err := s.selectImages()
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return nil
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, successStyle.Render(fmt.Sprintf("Selected %d image(s):", len(selected))))
	paths := make([]string, len(selected))
	for i, img := range selected {
		fmt.Fprintf(s.out, "  - %s\n", img.Name)
		paths[i] = img.Path
	}

	text, err := s.readQuestion()
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, promptStyle.Render("[Processing...]"))
	answer, err := s.gen.Generate(ctx, s.mode, paths, text)
	if err != nil {
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		s.log.Error("error during inference", slog.Any("error", err))
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		return nil
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, headingStyle.Render("=== Response ==="))
	fmt.Fprintln(s.out, answerStyle.Render(wordwrap.String(strings.TrimSpace(answer), s.Width)))
	fmt.Fprintln(s.out, ruleStyle.Render(strings.Repeat("=", 60)))
	fmt.Fprintln(s.out)
	return nil
}

func (s *Session) displayCatalog() {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, headingStyle.Render("=== Available Images ==="))
	for i, img := range s.images {
		fmt.Fprintf(s.out, "  [%d] %s (%.1f KB)\n", i+1, img.Name, img.SizeKB())
	}
	fmt.Fprintln(s.out)
}

// selectImages returns no images, and no error, when the selection was
// rejected and the catalog should be shown again.
func (s *Session) selectImages() ([]catalog.Image, error) {
	for {
		line, err := s.in.Readline(promptStyle.Render("Select image(s) [number or 'all']: "))
		if err != nil {
			return nil, err
		}
		selected, err := selection.Parse(s.images, line)
		if err == nil {
			return selected, nil
		}
		var oor *selection.IndexOutOfRangeError
		var nme *selection.NoMatchError
		switch {
		case errors.Is(err, selection.ErrEmpty):
			fmt.Fprintln(s.out, errorStyle.Render("Please enter a selection."))
		case errors.As(err, &oor):
			fmt.Fprintln(s.out, errorStyle.Render(fmt.Sprintf("Invalid index: %d", oor.Index)))
			return nil, nil
		case errors.As(err, &nme):
			fmt.Fprintln(s.out, errorStyle.Render(fmt.Sprintf("Could not find image matching: %s", nme.Query)))
		default:
			return nil, err
		}
	}
}

// readQuestion returns errQuit for a quit token, and an empty string for
// blank input.
func (s *Session) readQuestion() (string, error) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, promptStyle.Render("Enter your question (or 'quit' to exit):"))
	line, err := s.in.Readline(inputStyle.Render("> "))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(line)
	if IsQuit(text) {
		return "", errQuit
	}
	if text == "" {
		fmt.Fprintln(s.out, errorStyle.Render("Please enter a question."))
		return "", nil
	}
	return text, nil
}
