package model

import "strings"

// NativeAssetCode marks a withdrawal of the ledger's native currency.
const NativeAssetCode = "SOL"

// IsNativeAsset reports whether assetRef denotes the native currency.
// Empty, "native" and "SOL" (any case) are accepted.
func IsNativeAsset(assetRef string) bool {
	ref := strings.TrimSpace(assetRef)
	return ref == "" || strings.EqualFold(ref, "native") || strings.EqualFold(ref, NativeAssetCode)
}

// NormalizeAssetRef maps native aliases to NativeAssetCode and trims token references.
func NormalizeAssetRef(assetRef string) string {
	if IsNativeAsset(assetRef) {
		return NativeAssetCode
	}
	return strings.TrimSpace(assetRef)
}
