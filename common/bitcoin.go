package common

// HalvingInterval is the number of blocks between Bitcoin block subsidy halvings.
const HalvingInterval = 210_000
