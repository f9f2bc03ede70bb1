package notify

import "fmt"

// Message is a plain-text email to one recipient.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
}

// Subjects of the account emails.
const (
	WelcomeSubject      = "Welcome to task manager app"
	CancellationSubject = "Cancellation confirmation from Task manager app"
)

// WelcomeMessage is sent after a successful signup.
func WelcomeMessage(name, email string) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: WelcomeSubject,
		Text:    fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", name),
	}
}

// CancellationMessage is sent after an account is deleted.
func CancellationMessage(name, email string) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: CancellationSubject,
		Text: fmt.Sprintf("Hi %s, we hope you had a good time using our app. "+
			"Let us know what we could have done to keep you onboard.", name),
	}
}
