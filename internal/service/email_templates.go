package service

import "fmt"

func otpEmailTemplate(code, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s login code", appName)
	body := fmt.Sprintf(`Your one-time login code is:

%s

This code expires in 10 minutes. Requesting a new code invalidates this one.

If you didn't request this, ignore this email.

Best,
The %s Team`, code, appName)

	return subject, body
}
