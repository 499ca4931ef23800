package pharmacy

import "github.com/Apurer/pharmacy-dispatch/internal/shared/validation"

// check validates a request DTO before it is sent. Failures are reported
// with the same shape the API uses for 422 answers.
func (c *Client) check(payload any) error {
	return validation.Check(c.validate, payload)
}
