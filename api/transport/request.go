package transport

// CommandRequest carries one chat message addressed to the bot.
type CommandRequest struct {
	Text string `json:"text"`
}

// CommandResponse is the reply delivered for a recognized command.
type CommandResponse struct {
	Command string `json:"command"`
	Reply   string `json:"reply"`
}
