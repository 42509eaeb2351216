package notification

import (
	"fmt"
	"time"

	"github.com/OWDM/dental-ai-agent/pkg/types"
)

const displayTimeLayout = "Monday, January 2, 2006 at 3:04 PM"

func bookingConfirmationBody(apt *types.Appointment, price float64) string {
	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #2a7ae2;">Your appointment is confirmed</h2>
  <p>Dear %s,</p>
  <p>Your appointment has been booked successfully. Here are the details:</p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px;"><b>Service</b></td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px;"><b>Doctor</b></td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px;"><b>Date &amp; Time</b></td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px;"><b>Duration</b></td><td>%d minutes</td></tr>
    <tr><td style="padding: 4px 12px;"><b>Price</b></td><td>%.0f SAR</td></tr>
  </table>
  <p>If you need to reschedule or cancel, just reply to this conversation.</p>
  <p>See you soon!<br/>Riyadh Dental Care Clinic</p>
</body>
</html>`,
		apt.PatientName,
		apt.ServiceName,
		apt.DoctorName,
		apt.Start.Format(displayTimeLayout),
		apt.DurationMinutes,
		price,
	)
}

func cancellationBody(apt *types.Appointment) string {
	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #d9534f;">Your appointment has been cancelled</h2>
  <p>Dear %s,</p>
  <p>The following appointment has been cancelled as requested:</p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px;"><b>Service</b></td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px;"><b>Doctor</b></td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px;"><b>Date &amp; Time</b></td><td>%s</td></tr>
  </table>
  <p>If you'd like to book a new appointment, we're happy to help.</p>
  <p>Riyadh Dental Care Clinic</p>
</body>
</html>`,
		apt.PatientName,
		apt.ServiceName,
		apt.DoctorName,
		apt.Start.Format(displayTimeLayout),
	)
}

func rescheduleBody(apt *types.Appointment, oldStart time.Time) string {
	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #2a7ae2;">Your appointment has been rescheduled</h2>
  <p>Dear %s,</p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px;"><b>Service</b></td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px;"><b>Doctor</b></td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px;"><b>Previous time</b></td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px;"><b>New time</b></td><td>%s</td></tr>
  </table>
  <p>See you at the new time!<br/>Riyadh Dental Care Clinic</p>
</body>
</html>`,
		apt.PatientName,
		apt.ServiceName,
		apt.DoctorName,
		oldStart.Format(displayTimeLayout),
		apt.Start.Format(displayTimeLayout),
	)
}
