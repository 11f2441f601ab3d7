// Package importflow drives a single recipe import from method selection
// through extraction, preview and editing to the final save.
package importflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/pageza/recipebox/internal/client"
	"github.com/pageza/recipebox/internal/types"
)

type State int

const (
	StateIdle State = iota
	StateMethodChosen
	StateSubmitting
	StatePreviewReady
	StateEditing
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMethodChosen:
		return "method-chosen"
	case StateSubmitting:
		return "submitting"
	case StatePreviewReady:
		return "preview-ready"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Method string

const (
	MethodNone Method = ""
	MethodFile Method = "file"
	MethodText Method = "text"
)

var (
	ErrNoMethod = errors.New("Please select an import method")
	ErrNoImages = errors.New("Please select at least one image")
	ErrNoText   = errors.New("Please enter recipe text")
	// ErrStale means the view that started the request went away before it resolved
	ErrStale = errors.New("import view is no longer active")
)

// InvalidStateError is returned when an action does not apply to the current state
type InvalidStateError struct {
	Action string
	State  State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Action, e.State)
}

const (
	msgProcessFailed = "Failed to process recipe"
	msgSaveFailed    = "Failed to save recipe"
)

type Extractor interface {
	ImportFromImages(ctx context.Context, files []client.ImageFile) (string, error)
	ImportFromText(ctx context.Context, text string) (string, error)
}

type Saver interface {
	Save(ctx context.Context, markdown, userID, recipeID string) (*types.Recipe, error)
}

// View is a point-in-time copy of the controller for rendering
type View struct {
	State    State
	Method   Method
	Files    []client.ImageFile
	Text     string
	Markdown string
	Draft    string
	Error    string
}

type Controller struct {
	extractor Extractor
	saver     Saver

	mu       sync.Mutex
	state    State
	method   Method
	files    []client.ImageFile
	text     string
	markdown string
	draft    string
	errMsg   string
	mounted  bool
	epoch    uint64
}

func New(extractor Extractor, saver Saver) *Controller {
	return &Controller{extractor: extractor, saver: saver, mounted: true}
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	files := make([]client.ImageFile, len(c.files))
	copy(files, c.files)
	return View{
		State:    c.state,
		Method:   c.method,
		Files:    files,
		Text:     c.text,
		Markdown: c.markdown,
		Draft:    c.draft,
		Error:    c.errMsg,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Text is the pasted text entered for the text method
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

func (c *Controller) Files() []client.ImageFile {
	return c.View().Files
}

func (c *Controller) Markdown() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markdown
}

func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *Controller) invalid(action string) error {
	return &InvalidStateError{Action: action, State: c.state}
}

// ChooseMethod selects or switches the import method. Inputs entered for
// either method are kept.
func (c *Controller) ChooseMethod(m Method) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle && c.state != StateMethodChosen {
		return c.invalid("choose a method")
	}
	if m != MethodFile && m != MethodText {
		return ErrNoMethod
	}
	c.method = m
	c.state = StateMethodChosen
	c.errMsg = ""
	return nil
}

// AddFiles validates the whole batch first; one bad file rejects all of them
func (c *Controller) AddFiles(files []client.ImageFile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateMethodChosen || c.method != MethodFile {
		return c.invalid("add files")
	}
	for _, f := range files {
		if !types.AllowedImageType(f.ContentType) {
			c.errMsg = types.ErrUnsupportedImageType.Error()
			return types.ErrUnsupportedImageType
		}
	}
	for _, f := range files {
		if f.Size() > types.MaxImageBytes {
			c.errMsg = types.ErrImageTooLarge.Error()
			return types.ErrImageTooLarge
		}
	}
	c.files = append(c.files, files...)
	c.errMsg = ""
	return nil
}

func (c *Controller) RemoveFile(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateMethodChosen {
		return c.invalid("remove a file")
	}
	if index < 0 || index >= len(c.files) {
		return fmt.Errorf("no file at index %d", index)
	}
	c.files = append(c.files[:index:index], c.files[index+1:]...)
	return nil
}

func (c *Controller) SetText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateMethodChosen || c.method != MethodText {
		return c.invalid("enter text")
	}
	c.text = text
	return nil
}

// Submit sends the chosen input to extraction exactly once. Input errors are
// reported without a network call; extraction errors return to method
// selection with the input intact.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateMethodChosen {
		err := c.invalid("submit")
		c.mu.Unlock()
		return err
	}

	var run func() (string, error)
	switch c.method {
	case MethodFile:
		if len(c.files) == 0 {
			c.errMsg = ErrNoImages.Error()
			c.mu.Unlock()
			return ErrNoImages
		}
		for _, f := range c.files {
			if err := types.CheckImage(f.ContentType, f.Size()); err != nil {
				c.errMsg = err.Error()
				c.mu.Unlock()
				return err
			}
		}
		files := make([]client.ImageFile, len(c.files))
		copy(files, c.files)
		run = func() (string, error) { return c.extractor.ImportFromImages(ctx, files) }
	case MethodText:
		text := strings.TrimSpace(c.text)
		if text == "" {
			c.errMsg = ErrNoText.Error()
			c.mu.Unlock()
			return ErrNoText
		}
		run = func() (string, error) { return c.extractor.ImportFromText(ctx, text) }
	default:
		c.errMsg = ErrNoMethod.Error()
		c.mu.Unlock()
		return ErrNoMethod
	}

	c.state = StateSubmitting
	c.errMsg = ""
	epoch := c.epoch
	c.mu.Unlock()

	markdown, err := run()

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch || !c.mounted {
		log.Printf("[Import] dropping extraction result for an inactive view")
		return ErrStale
	}
	if err == nil && strings.TrimSpace(markdown) == "" {
		err = errors.New(msgProcessFailed)
	}
	if err != nil {
		c.state = StateMethodChosen
		c.errMsg = errorMessage(err, msgProcessFailed)
		return err
	}
	c.markdown = markdown
	c.state = StatePreviewReady
	return nil
}

// BeginEdit snapshots the previewed markdown into the draft
func (c *Controller) BeginEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePreviewReady {
		return c.invalid("edit")
	}
	c.draft = c.markdown
	c.state = StateEditing
	return nil
}

func (c *Controller) SetDraft(markdown string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return c.invalid("change the draft")
	}
	c.draft = markdown
	return nil
}

// CommitEdit makes the draft the previewed markdown
func (c *Controller) CommitEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return c.invalid("apply the edit")
	}
	c.markdown = c.draft
	c.draft = ""
	c.state = StatePreviewReady
	return nil
}

// CancelEdit discards the draft; the preview is unchanged
func (c *Controller) CancelEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return c.invalid("cancel the edit")
	}
	c.draft = ""
	c.state = StatePreviewReady
	return nil
}

// Save stores the previewed markdown as a new recipe. Success resets the
// controller; failure keeps the preview and sets the error.
func (c *Controller) Save(ctx context.Context, userID string) (*types.Recipe, error) {
	c.mu.Lock()
	if c.state != StatePreviewReady {
		err := c.invalid("save")
		c.mu.Unlock()
		return nil, err
	}
	markdown := c.markdown
	c.state = StateSaving
	c.errMsg = ""
	epoch := c.epoch
	c.mu.Unlock()

	recipe, err := c.saver.Save(ctx, markdown, userID, "")

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch || !c.mounted {
		return recipe, ErrStale
	}
	if err != nil {
		c.state = StatePreviewReady
		c.errMsg = errorMessage(err, msgSaveFailed)
		return nil, err
	}
	c.reset()
	return recipe, nil
}

// Reset returns to Idle and forgets every input
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	c.epoch++
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.method = MethodNone
	c.files = nil
	c.text = ""
	c.markdown = ""
	c.draft = ""
	c.errMsg = ""
}

// MarkUnmounted makes any in-flight request drop its result when it resolves.
// The request itself is not cancelled.
func (c *Controller) MarkUnmounted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mounted = false
	c.epoch++
	if c.state == StateSubmitting {
		c.state = StateMethodChosen
	}
	if c.state == StateSaving {
		c.state = StatePreviewReady
	}
}

// Mount marks the view active again
func (c *Controller) Mount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mounted = true
}

func errorMessage(err error, fallback string) string {
	if apiErr, ok := client.AsError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
