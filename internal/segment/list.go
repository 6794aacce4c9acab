package segment

import "strings"

// Task list container markup.
const (
	TaskListOpen  = `<ul class="contains-task-list">`
	TaskListClose = `</ul>`
)

// taskList tracks the open task-list fragment of the current section.
type taskList struct {
	index int // position of the list fragment in the current section
	items []string
}

// appendTaskItem adds one checkbox item to the open list, opening a new list
// fragment at the end of the current section if none is open.
func (b *Builder) appendTaskItem(line Line) {
	if b.list == nil {
		b.current = append(b.current, Fragment{Kind: KindContent})
		b.list = &taskList{index: len(b.current) - 1}
	}

	b.list.items = append(b.list.items, b.renderer.TaskItem(line.Checked, line.Text))

	frag := &b.current[b.list.index]
	if len(b.list.items) == 1 {
		frag.Text = line.Text
	} else {
		frag.Text += "\n" + line.Text
	}
	frag.HTML = TaskListOpen + "\n" + strings.Join(b.list.items, "\n")
}

// closeList seals the open list fragment. No-op when no list is open.
func (b *Builder) closeList() {
	if b.list == nil {
		return
	}
	frag := &b.current[b.list.index]
	frag.HTML = TaskListOpen + "\n" + strings.Join(b.list.items, "\n") + "\n" + TaskListClose
	b.list = nil
}
