package cli

import (
	"context"
	"fmt"
)

func (a *App) currentEmail() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.email
}

// List prints the cached tasks, newest first.
func (a *App) List(ctx context.Context) error {
	renderTasks(a.out, a.store.Cache().Snapshot(), a.editor.Edits.Get)
	return nil
}

// Refresh reloads the list from the backend and prints it.
func (a *App) Refresh(ctx context.Context) error {
	if _, err := a.store.FetchAll(ctx, a.currentEmail()); err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}
	return a.List(ctx)
}

// Add fills the draft from prompts and creates the task. The draft survives
// a failed attempt, so the next add starts from the same values.
func (a *App) Add(ctx context.Context) error {
	a.mu.Lock()
	d := a.draft
	a.mu.Unlock()

	var err error
	if d.Title, err = GetTextWithDefault(a.reader, "Title", d.Title, a.out); err != nil {
		return err
	}
	if d.Description, err = GetTextWithDefault(a.reader, "Description", d.Description, a.out); err != nil {
		return err
	}
	if d.ImageFile, err = GetTextWithDefault(a.reader, "Image file (optional)", d.ImageFile, a.out); err != nil {
		return err
	}

	created, err := a.editor.Create(ctx, &d, a.currentEmail())

	if err == nil {
		// the file selection is a per-attempt choice
		d.ImageFile = ""
	}
	a.mu.Lock()
	a.draft = d
	a.mu.Unlock()

	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}

	if created.HasImage() {
		fmt.Fprintf(a.out, "Created %s with image\n", created.ID)
	} else {
		fmt.Fprintf(a.out, "Created %s\n", created.ID)
	}
	return nil
}

// Edit stores a new description for id without sending it.
func (a *App) Edit(ctx context.Context, id string) error {
	current := ""
	if text, ok := a.editor.Edits.Get(id); ok {
		current = text
	} else if t, ok := a.store.Cache().Find(id); ok {
		current = t.Description
	} else {
		fmt.Fprintln(a.out, "Unknown task:", id)
		return fmt.Errorf("task %s not in list", id)
	}

	text, err := GetTextWithDefault(a.reader, "Description", current, a.out)
	if err != nil {
		return err
	}
	a.editor.Edits.Set(id, text)
	fmt.Fprintf(a.out, "Saved locally; run 'update %s' to send\n", id)
	return nil
}

// Update sends the pending description for id. Without one, it prompts.
func (a *App) Update(ctx context.Context, id string) error {
	text, ok := a.editor.Edits.Get(id)
	if !ok {
		var err error
		if text, err = GetSimpleText(a.reader, "Description", a.out); err != nil {
			return err
		}
	}

	if _, err := a.editor.Update(ctx, id, text); err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}
	fmt.Fprintf(a.out, "Updated %s\n", id)
	return nil
}

// Delete removes the task and its image.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.editor.Delete(ctx, id); err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", id)
	return nil
}
