package scrapers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/burdurhub-hq/burdur-news-hub/pkg/httpclient"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/sites"
)

// stubResponse implements httpclient.Response.
type stubResponse struct {
	body       []byte
	statusCode int
}

func (s stubResponse) Body() []byte    { return s.body }
func (s stubResponse) StatusCode() int { return s.statusCode }

// stubClient serves canned bodies keyed by URL. Unknown URLs get a 404.
type stubClient struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func newStubClient(pages map[string]string) *stubClient {
	return &stubClient{pages: pages}
}

func (s *stubClient) Get(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, url)
	body, ok := s.pages[url]
	s.mu.Unlock()
	if !ok {
		return stubResponse{statusCode: 404}, nil
	}
	return stubResponse{body: []byte(body), statusCode: 200}, nil
}

func (s *stubClient) GetWithParams(ctx context.Context, url string, params, headers map[string]string) (httpclient.Response, error) {
	return s.Get(ctx, fmt.Sprintf("%s?offset=%s", url, params["offset"]), headers)
}

// failingClient errors on every request.
type failingClient struct{}

func (failingClient) Get(_ context.Context, _ string, _ map[string]string) (httpclient.Response, error) {
	return nil, errors.New("dial tcp: i/o timeout")
}

func (failingClient) GetWithParams(_ context.Context, _ string, _, _ map[string]string) (httpclient.Response, error) {
	return nil, errors.New("dial tcp: i/o timeout")
}

func testRegistry(t *testing.T) *sites.Registry {
	t.Helper()
	yaml := `
sites:
  - id: burdur_yenigun
    name: Burdur Yeni Gün
    enabled: true
    category: local
    base_url: https://www.burduryenigun.com
    list_url: https://www.burduryenigun.com/tum-mansetler
    ajax_url: https://www.burduryenigun.com/service/json/pagination.json
  - id: bomba15
    name: Bomba15
    enabled: true
    category: local
    base_url: https://www.bomba15.com
    list_url: https://www.bomba15.com/tum-mansetler
    ajax_url: https://www.bomba15.com/service/json/pagination.json
  - id: burdur_gazetesi
    name: Burdur Gazetesi
    enabled: true
    category: local
    base_url: https://www.burdurgazetesi.com
    list_url: https://www.burdurgazetesi.com/arsiv
  - id: cagdas_burdur
    name: Çağdaş Burdur
    enabled: true
    category: local
    base_url: https://www.cagdasburdur.com
  - id: nnc_haber
    name: NNC Haber
    enabled: true
    category: local
    base_url: https://www.nnchaber.com
  - id: tarimdanhaber
    name: Tarımdan Haber
    enabled: false
    category: national
    base_url: https://www.tarimdanhaber.com
`
	path := filepath.Join(t.TempDir(), "sites.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write sites file: %v", err)
	}
	reg, err := sites.Load(path)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return reg
}

func testOptions() Options {
	return Options{
		Client:     failingClient{},
		DateClient: failingClient{},
	}
}

func TestNewKnowsEverySiteID(t *testing.T) {
	reg := testRegistry(t)
	for _, id := range []string{"burdur_yenigun", "bomba15", "burdur_gazetesi", "cagdas_burdur", "nnc_haber", "tarimdanhaber"} {
		sc, err := New(id, reg, testOptions())
		if err != nil {
			t.Fatalf("New(%q): %v", id, err)
		}
		if sc.SiteID() != id {
			t.Fatalf("SiteID = %q, want %q", sc.SiteID(), id)
		}
	}
}

func TestNewRejectsUnknownSite(t *testing.T) {
	reg := testRegistry(t)
	if _, err := New("hurriyet", reg, testOptions()); !errors.Is(err, ErrUnknownSite) {
		t.Fatalf("error = %v, want ErrUnknownSite", err)
	}
}

func TestNewAllSkipsDisabledSites(t *testing.T) {
	scrs := NewAll(testRegistry(t), testOptions())
	if len(scrs) != 5 {
		t.Fatalf("expected 5 enabled scrapers, got %d", len(scrs))
	}
	for _, sc := range scrs {
		if sc.SiteID() == "tarimdanhaber" {
			t.Fatal("disabled site must not get a scraper")
		}
	}
}

func TestResolvesDatesCapability(t *testing.T) {
	reg := testRegistry(t)
	want := map[string]bool{
		"burdur_yenigun":  true,
		"bomba15":         true,
		"burdur_gazetesi": false,
		"cagdas_burdur":   true,
		"nnc_haber":       true,
		"tarimdanhaber":   true,
	}
	for id, resolves := range want {
		sc, err := New(id, reg, testOptions())
		if err != nil {
			t.Fatalf("New(%q): %v", id, err)
		}
		if sc.ResolvesDates() != resolves {
			t.Errorf("%s: ResolvesDates = %v, want %v", id, sc.ResolvesDates(), resolves)
		}
	}
}

const yeniGunListing = `
<html><body>
  <div class="card">
    <img src="https://cdn.example.com/a.jpg">
    <a class="fw-bold" href="/kategori/gundem">Gündem</a>
    <h4><a href="/haber/belediye-yeni-projeyi-acikladi">Belediye yeni projeyi açıkladı</a></h4>
  </div>
  <div class="card">
    <h4><a href="/haber/kisa">Kısa</a></h4>
  </div>
  <div class="card">
    <h4><a href="https://www.burduryenigun.com/haber/okullarda-yeni-donem-basliyor">Okullarda yeni dönem başlıyor</a></h4>
  </div>
  <div class="card"><p>başlıksız kart</p></div>
</body></html>`

func TestYeniGunExtractCandidates(t *testing.T) {
	sc, err := New("burdur_yenigun", testRegistry(t), testOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := sc.ExtractCandidates(yeniGunListing)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %#v", len(got), got)
	}

	first := got[0]
	if first.Link != "https://www.burduryenigun.com/haber/belediye-yeni-projeyi-acikladi" {
		t.Fatalf("relative link not joined: %q", first.Link)
	}
	if first.Category != "Gündem" || first.Image != "https://cdn.example.com/a.jpg" {
		t.Fatalf("unexpected candidate %#v", first)
	}
	if got[1].Category != "Genel" {
		t.Fatalf("missing category should default to Genel, got %q", got[1].Category)
	}
}

func TestYeniGunScrapeEndToEnd(t *testing.T) {
	now := time.Now()
	today := now.Format("02.01.2006")

	listing := `<html><body>
	  <div class="card"><h4><a href="/haber/birinci-haber-basligi">Birinci haber başlığı</a></h4></div>
	  <div class="card"><h4><a href="/haber/ikinci-haber-basligi">İkinci haber başlığı</a></h4></div>
	</body></html>`
	articlePage := fmt.Sprintf(`<html><body><time class="fw-bold">%s 09:30</time></body></html>`, today)

	pages := map[string]string{
		"https://www.burduryenigun.com/tum-mansetler":               listing,
		"https://www.burduryenigun.com/haber/birinci-haber-basligi": articlePage,
		"https://www.burduryenigun.com/haber/ikinci-haber-basligi":  articlePage,
	}

	opts := Options{
		Client:     newStubClient(pages),
		DateClient: newStubClient(pages),
		MaxPages:   1,
		Now:        func() time.Time { return now },
	}
	sc, err := New("burdur_yenigun", testRegistry(t), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	articles, err := sc.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	for _, a := range articles {
		if !a.IsToday {
			t.Fatalf("article should be stamped today: %#v", a)
		}
		if a.Source != "Burdur Yeni Gün" || a.SourceID != "burdur_yenigun" {
			t.Fatalf("source fields wrong: %#v", a)
		}
		if a.Date != today || a.Time != "09:30" {
			t.Fatalf("formatted date wrong: %#v", a)
		}
	}
}

const bombaListing = `
<html><body>
  <div class="col-6">
    <div class="card">
      <img src="/img/b.jpg">
      <h4><a href="/haber/sehirde-trafik-duzenlemesi">Şehirde trafik düzenlemesi yapıldı</a></h4>
    </div>
  </div>
  <div class="col-lg-4">
    <div class="card">
      <h4><a href="/haber/yeni-spor-tesisi-hizmette">Yeni spor tesisi hizmette</a></h4>
    </div>
  </div>
</body></html>`

func TestBomba15ExtractCandidates(t *testing.T) {
	sc, err := New("bomba15", testRegistry(t), testOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := sc.ExtractCandidates(bombaListing)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Link != "https://www.bomba15.com/haber/sehirde-trafik-duzenlemesi" {
		t.Fatalf("link = %q", got[0].Link)
	}
}

const nncListing = `
<html><body>
  <div class="owl-carousel">
    <div class="item" onclick="window.open('/gundem/yeni-hastane-binasi-tamamlandi/','_self')">
      <img src="/u/n1.jpg" alt="Yeni hastane binası tamamlandı">
    </div>
    <div class="item" onclick="window.open('/bilinmeyen/gizemli-olay-aydinlandi/','_self')">
      <img src="/u/n2.jpg" alt="Gizemli olay sonunda aydınlandı">
    </div>
    <div class="item"><img src="/u/n3.jpg" alt="onclick yok bu kartta hiç"></div>
  </div>
</body></html>`

func TestNNCExtractCandidates(t *testing.T) {
	sc, err := New("nnc_haber", testRegistry(t), testOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := sc.ExtractCandidates(nncListing)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Link != "https://www.nnchaber.com/gundem/yeni-hastane-binasi-tamamlandi/" {
		t.Fatalf("onclick link not extracted: %q", got[0].Link)
	}
	if got[0].Category != "Gündem" {
		t.Fatalf("category = %q, want Gündem", got[0].Category)
	}
	if got[1].Category != "Bilinmeyen" {
		t.Fatalf("unknown segment should be capitalized, got %q", got[1].Category)
	}
}

func TestNNCResolveDateFromInfoBar(t *testing.T) {
	page := `<html><body>
	  <ul class="blog-info-link">
	    <li><i class="far fa-calendar"></i><a>15.03.2024</a></li>
	    <li><i class="far fa-clock"></i><a>14.45</a></li>
	  </ul>
	</body></html>`
	client := newStubClient(map[string]string{"https://www.nnchaber.com/gundem/x/": page})

	sc, err := New("nnc_haber", testRegistry(t), Options{Client: client, DateClient: client})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, ok := sc.ResolveDate(context.Background(), "https://www.nnchaber.com/gundem/x/")
	if !ok {
		t.Fatal("expected a resolved date")
	}
	want := time.Date(2024, 3, 15, 14, 45, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

const tarimdanListing = `
<html><body>
  <div class="swiper-slide" data-link="/haber/bugday-fiyatlari-yukseldi">
    <span class="mh-category">Ekonomi</span>
    <h3 class="title-2-line">Buğday fiyatları yeniden yükseldi</h3>
    <img class="img-fluid" src="/img/bugday.jpg">
  </div>
  <div class="swiper-slide">
    <a href="https://www.tarimdanhaber.com/haber/sut-uretimi-artti"></a>
    <h3>Süt üretimi geçen yıla göre arttı</h3>
    <img src="/img/sut.jpg">
  </div>
  <div class="swiper-slide" data-link="/h"><h3>Kısa başlık ama link de kısa</h3></div>
</body></html>`

func TestTarimdanExtractCandidates(t *testing.T) {
	sc, err := New("tarimdanhaber", testRegistry(t), testOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := sc.ExtractCandidates(tarimdanListing)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %#v", len(got), got)
	}
	if got[0].Link != "https://www.tarimdanhaber.com/haber/bugday-fiyatlari-yukseldi" {
		t.Fatalf("data-link not used: %q", got[0].Link)
	}
	if got[0].Category != "Ekonomi" || got[1].Category != "Genel" {
		t.Fatalf("categories wrong: %q / %q", got[0].Category, got[1].Category)
	}
}

const cagdasListing = `
<html><body>
  <ul class="bxslider">
    <li>
      <div class="news-post">
        <a href="/haber/gol-seviyesi-dustu.html"><img data-src="/up/gol.jpg" alt="Burdur Gölü'nde su seviyesi düştü"></a>
      </div>
      <div class="hover-box"><a class="category-post">Çevre</a></div>
    </li>
    <li>
      <div class="news-post">
        <a href="https://www.cagdasburdur.com/haber/festival.html"><img src="https://cdn.x.com/f.jpg" alt="Geleneksel festival bu hafta başlıyor"></a>
      </div>
    </li>
  </ul>
</body></html>`

func TestCagdasExtractCandidates(t *testing.T) {
	sc, err := New("cagdas_burdur", testRegistry(t), testOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := sc.ExtractCandidates(cagdasListing)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Link != "https://www.cagdasburdur.com/haber/gol-seviyesi-dustu.html" {
		t.Fatalf("link = %q", got[0].Link)
	}
	if got[0].Image != "https://www.cagdasburdur.com/up/gol.jpg" {
		t.Fatalf("data-src image not joined: %q", got[0].Image)
	}
	if got[0].Category != "Çevre" || got[1].Category != "Genel" {
		t.Fatalf("categories wrong: %q / %q", got[0].Category, got[1].Category)
	}
}

func TestCagdasResolveDateFallsBackToNow(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)
	client := newStubClient(map[string]string{
		"https://www.cagdasburdur.com/haber/x.html": `<html><body><p>tarihsiz sayfa</p></body></html>`,
	})
	sc, err := New("cagdas_burdur", testRegistry(t), Options{
		Client:     client,
		DateClient: client,
		Now:        func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, ok := sc.ResolveDate(context.Background(), "https://www.cagdasburdur.com/haber/x.html")
	if !ok || !got.Equal(now) {
		t.Fatalf("dateless page should fall back to now, got %v ok=%v", got, ok)
	}

	if _, ok := sc.ResolveDate(context.Background(), "https://www.cagdasburdur.com/haber/yok.html"); ok {
		t.Fatal("fetch failure must not fall back to now")
	}
}

func TestGazetesiExtractArchiveDay(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)
	html := `<html><body>
	  <div class="f-hit"><ul>
	    <li><a href="/haber/gunun-mansedi-burada"><h2>Günün manşeti tam burada</h2></a><time>09:15</time></li>
	    <li><a href="/haber/gunun-mansedi-burada"><h2>Günün manşeti tam burada</h2></a><time>09:15</time></li>
	  </ul></div>
	  <div class="f-cat">
	    <h3>Spor</h3>
	    <ul><li><a href="/haber/takim-galibiyete-ulasti">Takım galibiyete ulaştı</a><time>18:40</time></li></ul>
	  </div>
	</body></html>`

	reg := testRegistry(t)
	cfg, _ := reg.ByID("burdur_gazetesi")
	sc := &gazetesiScraper{base: newBase(cfg, testOptions().withDefaults())}

	got := sc.extractArchiveDay(html, day)
	if len(got) != 2 {
		t.Fatalf("expected 2 deduped articles, got %d", len(got))
	}
	if got[0].Category != "Manşet" || got[0].ParsedDate.Hour() != 9 || got[0].ParsedDate.Minute() != 15 {
		t.Fatalf("headline item wrong: %#v", got[0])
	}
	if got[1].Category != "Spor" || got[1].ParsedDate.Hour() != 18 {
		t.Fatalf("category item wrong: %#v", got[1])
	}
	if !strings.HasPrefix(got[0].Link, "https://www.burdurgazetesi.com/") {
		t.Fatalf("link not joined: %q", got[0].Link)
	}
}
