package handlers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/ytakahashi/todo-web/internal/services"
)

// Replier is the part of the LINE messaging client the webhook needs.
type Replier interface {
	ReplyMessage(replyMessageRequest *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

type WebhookHandler struct {
	bot           Replier
	todos         *services.TodoService
	channelSecret string
}

func NewWebhookHandler(bot Replier, todos *services.TodoService, channelSecret string) *WebhookHandler {
	return &WebhookHandler{
		bot:           bot,
		todos:         todos,
		channelSecret: channelSecret,
	}
}

var commandPattern = regexp.MustCompile(`(?s)^\s*(\S+)(?:\s+(.*?))?\s*$`)

func getUserID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	default:
		return ""
	}
}

func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request())
	if err != nil {
		if err == webhook.ErrInvalidSignature {
			log.Warn("invalid LINE signature")
			return c.NoContent(http.StatusBadRequest)
		}
		log.Error("parse LINE request", "err", err)
		return c.NoContent(http.StatusInternalServerError)
	}

	ctx := c.Request().Context()
	for _, event := range cb.Events {
		switch e := event.(type) {
		case webhook.MessageEvent:
			switch message := e.Message.(type) {
			case webhook.TextMessageContent:
				userID := getUserID(e.Source)
				if err := h.handleTextMessage(ctx, e.ReplyToken, userID, message.Text); err != nil {
					log.Error("handle text message", "user", userID, "err", err)
				}
			}
		case webhook.PostbackEvent:
			userID := getUserID(e.Source)
			if err := h.handlePostback(ctx, e.ReplyToken, userID, e.Postback.Data); err != nil {
				log.Error("handle postback", "user", userID, "err", err)
			}
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *WebhookHandler) handleTextMessage(ctx context.Context, replyToken, userID, text string) error {
	log.Debug("received text", "user", userID, "text", text)

	matches := commandPattern.FindStringSubmatch(text)
	if matches == nil {
		return nil
	}
	command := strings.ToLower(matches[1])
	arg := matches[2]

	switch command {
	case "add":
		if arg == "" {
			return h.replyMessage(replyToken, "Please give the task.\nExample: add Buy milk")
		}
		return h.askForPriority(replyToken, arg)
	case "list":
		return h.showTodoList(ctx, replyToken)
	case "done", "toggle":
		id, ok := parseCommandID(arg)
		if !ok {
			return h.replyMessage(replyToken, "Please give the todo number.\nExample: done 3")
		}
		return h.toggleTodo(ctx, replyToken, id)
	case "delete":
		id, ok := parseCommandID(arg)
		if !ok {
			return h.replyMessage(replyToken, "Please give the todo number.\nExample: delete 3")
		}
		return h.deleteTodo(ctx, replyToken, id)
	case "help":
		return h.showHelp(replyToken)
	}

	// Unrecognised messages get no reply.
	return nil
}

func (h *WebhookHandler) askForPriority(replyToken, task string) error {
	var items []messaging_api.QuickReplyItem
	for _, p := range priorities {
		items = append(items, messaging_api.QuickReplyItem{
			Action: &messaging_api.PostbackAction{
				Label:       p,
				Data:        fmt.Sprintf("add:%s:%s", p, task),
				DisplayText: p,
			},
		})
	}

	message := &messaging_api.TextMessage{
		Text:       fmt.Sprintf("Priority for \"%s\"?", task),
		QuickReply: &messaging_api.QuickReply{Items: items},
	}

	_, err := h.bot.ReplyMessage(
		&messaging_api.ReplyMessageRequest{
			ReplyToken: replyToken,
			Messages:   []messaging_api.MessageInterface{message},
		},
	)

	return err
}

func (h *WebhookHandler) handlePostback(ctx context.Context, replyToken, userID, data string) error {
	log.Debug("received postback", "user", userID, "data", data)

	parts := strings.SplitN(data, ":", 3)
	if len(parts) < 2 {
		return nil
	}

	switch parts[0] {
	case "add":
		if len(parts) != 3 {
			return nil
		}
		return h.createTodo(ctx, replyToken, parts[2], parts[1])
	case "toggle":
		id, ok := parseCommandID(parts[1])
		if !ok {
			return nil
		}
		return h.toggleTodo(ctx, replyToken, id)
	}

	return nil
}

func (h *WebhookHandler) createTodo(ctx context.Context, replyToken, task, priority string) error {
	todo, err := h.todos.Add(ctx, task, priority, nil)
	if err != nil {
		log.Error("add todo", "err", err)
		return h.replyMessage(replyToken, "Failed to add the todo.")
	}
	if todo == nil {
		return h.replyMessage(replyToken, "The task is empty, nothing was added.")
	}

	return h.replyMessage(replyToken, fmt.Sprintf("✅ Added #%d \"%s\" (%s)", todo.ID, todo.Task, todo.Priority))
}

func (h *WebhookHandler) showTodoList(ctx context.Context, replyToken string) error {
	todos, err := h.todos.List(ctx)
	if err != nil {
		log.Error("list todos", "err", err)
		return h.replyMessage(replyToken, "Failed to load the todo list.")
	}

	if len(todos) == 0 {
		return h.replyMessage(replyToken, "No todos yet.")
	}

	_, err = h.bot.ReplyMessage(
		&messaging_api.ReplyMessageRequest{
			ReplyToken: replyToken,
			Messages:   []messaging_api.MessageInterface{h.createTodoListFlexMessage(todos)},
		},
	)
	return err
}

func (h *WebhookHandler) createTodoListFlexMessage(todos []services.Todo) *messaging_api.FlexMessage {
	var contents []messaging_api.FlexComponentInterface

	for i, todo := range todos {
		detail := todo.Priority
		if todo.DueDisplay != nil {
			detail += " · " + *todo.DueDisplay
		}

		title := fmt.Sprintf("#%d %s", todo.ID, todo.Task)
		label := "Done"
		if todo.Completed {
			title = "✅ " + title
			label = "Undo"
		}

		box := &messaging_api.FlexBox{
			Layout: "vertical",
			Contents: []messaging_api.FlexComponentInterface{
				&messaging_api.FlexText{
					Text:   title,
					Weight: "bold",
					Size:   "md",
				},
				&messaging_api.FlexText{
					Text:  detail,
					Size:  "sm",
					Color: "#999999",
				},
				&messaging_api.FlexButton{
					Action: &messaging_api.PostbackAction{
						Label: label,
						Data:  fmt.Sprintf("toggle:%d", todo.ID),
					},
					Style: "primary",
					Color: "#1DB446",
				},
			},
			Margin:  "md",
			Spacing: "sm",
		}

		if i > 0 {
			box.PaddingTop = "md"
		}

		contents = append(contents, box)
	}

	return &messaging_api.FlexMessage{
		AltText: fmt.Sprintf("Todo list (%d)", len(todos)),
		Contents: &messaging_api.FlexBubble{
			Header: &messaging_api.FlexBox{
				Layout: "vertical",
				Contents: []messaging_api.FlexComponentInterface{
					&messaging_api.FlexText{
						Text:   "Todo list",
						Weight: "bold",
						Size:   "xl",
					},
				},
				PaddingAll: "md",
			},
			Body: &messaging_api.FlexBox{
				Layout:   "vertical",
				Contents: contents,
				Spacing:  "md",
			},
		},
	}
}

func (h *WebhookHandler) toggleTodo(ctx context.Context, replyToken string, id int) error {
	todo, err := h.todos.Toggle(ctx, id)
	if err != nil {
		log.Error("toggle todo", "id", id, "err", err)
		return h.replyMessage(replyToken, "Failed to update the todo.")
	}
	if todo == nil {
		return h.replyMessage(replyToken, fmt.Sprintf("Todo #%d was not found.", id))
	}

	if todo.Completed {
		return h.replyMessage(replyToken, fmt.Sprintf("🎉 Completed #%d \"%s\"", todo.ID, todo.Task))
	}
	return h.replyMessage(replyToken, fmt.Sprintf("↩️ Reopened #%d \"%s\"", todo.ID, todo.Task))
}

func (h *WebhookHandler) deleteTodo(ctx context.Context, replyToken string, id int) error {
	removed, err := h.todos.Delete(ctx, id)
	if err != nil {
		log.Error("delete todo", "id", id, "err", err)
		return h.replyMessage(replyToken, "Failed to delete the todo.")
	}
	if removed == 0 {
		return h.replyMessage(replyToken, fmt.Sprintf("Todo #%d was not found.", id))
	}

	return h.replyMessage(replyToken, fmt.Sprintf("🗑️ Deleted todo #%d.", id))
}

func (h *WebhookHandler) showHelp(replyToken string) error {
	helpText := `📝 Todo bot

🆕 Add a todo:
・add <task>
・example: add Buy milk

📋 Show the list:
・list

✅ Mark done / reopen:
・done <number>

🗑️ Delete:
・delete <number>

❓ Help:
・help`

	return h.replyMessage(replyToken, helpText)
}

func (h *WebhookHandler) replyMessage(replyToken, text string) error {
	message := &messaging_api.TextMessage{
		Text: text,
	}

	_, err := h.bot.ReplyMessage(
		&messaging_api.ReplyMessageRequest{
			ReplyToken: replyToken,
			Messages:   []messaging_api.MessageInterface{message},
		},
	)

	if err != nil {
		log.Error("send reply message", "err", err)
	}

	return err
}

func parseCommandID(arg string) (int, bool) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(arg), "#"), 10, 31)
	if err != nil {
		return 0, false
	}
	return int(id), true
}
