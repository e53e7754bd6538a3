package task

import (
	"fmt"
	"strings"

	"github.com/fastygo/taskbot/domain"
)

var (
	encouragements = []string{
		"You got this!",
		"I believe in you!",
		"You can do anything!",
		"Let's go!",
	}
	congratulations = []string{
		"Good job!",
		"You did it!",
		"Woohoo!",
		"Way to go!",
		"You're crushing it!",
	}
)

const noTasksFound = "No tasks found!"

func (uc *UseCase) pick(pool []string) string {
	return pool[uc.intn(len(pool))]
}

func helpText(prefix string) string {
	lines := []struct{ usage, desc string }{
		{"add <task name>", "Adds a new task for the user."},
		{"start <task name or number>", "Start an existing task by name or number, or add and activate a new task."},
		{"current", "Displays the user's active task."},
		{"done", "Marks the user's active task as completed and activates the next task, if available."},
		{"cancel [task name or number]", "Cancels the user's active task, or by task name or number."},
		{"advance", "Activates the next task in the user's list of incomplete tasks."},
		{"list-mine", "Lists current incomplete tasks for the user."},
		{"list-all", "Lists all current incomplete tasks for all users."},
		{"list-completed", "Lists all completed tasks for all users."},
		{"clear-all", "Clears all tasks for all users (moderator only)."},
		{"retention [duration]", "Shows or sets how long tasks are kept (setting requires moderator)."},
	}

	var b strings.Builder
	b.WriteString("Commands:\n\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "* `%s%s` - %s\n", prefix, l.usage, l.desc)
	}
	return b.String()
}

// numbered renders "1. name" lines, flagging the active task when markActive is set.
func numbered(tasks []domain.Task, markActive bool) string {
	var b strings.Builder
	for i, t := range tasks {
		fmt.Fprintf(&b, "%d. %s", i+1, t.Name)
		if markActive && t.Active {
			b.WriteString(" (active)")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func bulleted(tasks []domain.Task) string {
	var b strings.Builder
	for _, t := range tasks {
		fmt.Fprintf(&b, "* %s\n", t.Name)
	}
	return b.String()
}

func section(owner, body string) string {
	return fmt.Sprintf("\n**%s**\n\n%s", owner, body)
}
