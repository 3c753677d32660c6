package constants

// AnchorPhrase is the canonical marker that opens every foreclosure notice.
const AnchorPhrase = "(Mortgage Foreclosure)"

// NotAvailable is written into a field whose pattern cascade found nothing.
const NotAvailable = "Not available"

// DateLayout is the layout of the capture date column.
const DateLayout = "2006-01-02"
