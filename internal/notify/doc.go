// Package notify sends account emails (welcome on signup, confirmation on
// account deletion) in the background.
//
// Requests hand messages to a Dispatcher, which queues them and delivers
// them from a small worker pool through a Mailer. Delivery failures are
// logged and never reach the request that triggered them.
package notify
