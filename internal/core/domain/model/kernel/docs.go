// Package kernel provides the value objects shared by the order domain.
//
// The package includes:
//   - OrderID: the time-ordered, decodable order identifier (yyMMdd + 13-digit sequence)
//   - Actor: who asked for a lifecycle change (user, operator, or the system itself)
//   - UUID: identifiers for append-only records such as cancellations
//   - Money helpers: validation and conversion of decimal amounts
//
// Value objects are immutable. Their zero values are invalid and fail Validate,
// so an instance that skipped its constructor is caught before it is persisted.
package kernel
