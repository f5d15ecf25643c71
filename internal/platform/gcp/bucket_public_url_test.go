package gcp

import "testing"

func TestResolveObjectStoragePublicBaseURLGCSDefault(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_PUBLIC_BASE_URL", "")

	baseURL, source, err := resolveObjectStoragePublicBaseURL(ObjectStorageConfig{Mode: ObjectStorageModeGCS})
	if err != nil {
		t.Fatalf("resolveObjectStoragePublicBaseURL: %v", err)
	}
	if baseURL != "" {
		t.Fatalf("baseURL: want empty got=%q", baseURL)
	}
	if source != "gcs_default" {
		t.Fatalf("source: want=%q got=%q", "gcs_default", source)
	}
}

func TestResolveObjectStoragePublicBaseURLEmulatorFallback(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_PUBLIC_BASE_URL", "")

	baseURL, source, err := resolveObjectStoragePublicBaseURL(ObjectStorageConfig{
		Mode:         ObjectStorageModeGCSEmulator,
		EmulatorHost: "http://fake-gcs:4443",
	})
	if err != nil {
		t.Fatalf("resolveObjectStoragePublicBaseURL: %v", err)
	}
	if baseURL != "http://fake-gcs:4443" || source != "storage_emulator_host" {
		t.Fatalf("got baseURL=%q source=%q", baseURL, source)
	}
}

func TestResolveObjectStoragePublicBaseURLInvalidEnv(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_PUBLIC_BASE_URL", "localhost:4443")

	if _, _, err := resolveObjectStoragePublicBaseURL(ObjectStorageConfig{Mode: ObjectStorageModeGCS}); err == nil {
		t.Fatalf("resolveObjectStoragePublicBaseURL: expected error, got nil")
	}
}

func TestGetPublicURL(t *testing.T) {
	cases := []struct {
		name string
		bs   *bucketService
		cat  BucketCategory
		key  string
		want string
	}{
		{
			name: "gcs default",
			bs:   &bucketService{productBucket: bucketConfig{name: "menu-products"}},
			cat:  BucketCategoryProduct,
			key:  "products/shop/burger.jpg",
			want: "https://storage.googleapis.com/menu-products/products/shop/burger.jpg",
		},
		{
			name: "cdn domain wins",
			bs:   &bucketService{brandingBucket: bucketConfig{name: "menu-branding", cdnDomain: "cdn.scandine.test"}},
			cat:  BucketCategoryBranding,
			key:  "/logos/shop/1.png",
			want: "https://cdn.scandine.test/logos/shop/1.png",
		},
		{
			name: "emulator media url",
			bs: &bucketService{
				storageMode:   ObjectStorageModeGCSEmulator,
				emulatorHost:  "http://fake-gcs:4443",
				productBucket: bucketConfig{name: "menu-products"},
			},
			cat:  BucketCategoryProduct,
			key:  "products/a b.jpg",
			want: "http://fake-gcs:4443/storage/v1/b/menu-products/o/products%2Fa%20b.jpg?alt=media",
		},
		{
			name: "public base url",
			bs: &bucketService{
				publicBaseURL: "http://localhost:4443",
				productBucket: bucketConfig{name: "menu-products"},
			},
			cat:  BucketCategoryProduct,
			key:  "products/x.jpg",
			want: "http://localhost:4443/menu-products/products/x.jpg",
		},
	}
	for _, tc := range cases {
		if got := tc.bs.GetPublicURL(tc.cat, tc.key); got != tc.want {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.want, got)
		}
	}
}

func TestContentTypeForKey(t *testing.T) {
	if got := contentTypeForKey("logos/a/1.PNG"); got != "image/png" {
		t.Fatalf("png: got %q", got)
	}
	if got := contentTypeForKey("products/a/1.jpg?v=2"); got != "image/jpeg" {
		t.Fatalf("jpg with query: got %q", got)
	}
	if got := contentTypeForKey("notes.txt"); got != "" {
		t.Fatalf("txt: got %q", got)
	}
}
